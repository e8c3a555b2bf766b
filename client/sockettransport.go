package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/foomo/navserver/pkg/handler"
	"github.com/pkg/errors"
)

// maxLengthDigits of the reply length header
const maxLengthDigits = 20

type socketTransport struct {
	connPool    *connectionPool
	waitTimeout time.Duration
}

// NewSocketTransport waitTimeout limits the wait for a free connection
func NewSocketTransport(server string, connectionPoolSize int, waitTimeout time.Duration) Transport {
	return &socketTransport{
		connPool:    newConnectionPool(server, connectionPoolSize),
		waitTimeout: waitTimeout,
	}
}

func (st *socketTransport) Close() {
	st.connPool.close()
}

func (st *socketTransport) Call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error {
	jsonBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "could not marshal request")
	}

	getCtx := ctx
	if st.waitTimeout > 0 {
		var cancel context.CancelFunc
		getCtx, cancel = context.WithTimeout(ctx, st.waitTimeout)
		defer cancel()
	}
	conn, err := st.connPool.get(getCtx)
	if err != nil {
		return errors.Wrap(err, "could not get a connection")
	}

	responseBytes, err := st.roundTrip(ctx, conn, route, jsonBytes)
	st.connPool.put(conn, err)
	if err != nil {
		return err
	}
	return decodeReply(responseBytes, response)
}

func (st *socketTransport) roundTrip(ctx context.Context, conn net.Conn, route handler.Route, jsonBytes []byte) ([]byte, error) {
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	// write header result will be like route:2{}
	request := append([]byte(fmt.Sprintf("%s:%d", route, len(jsonBytes))), jsonBytes...)
	if _, err := conn.Write(request); err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}

	// read "<length>{"
	var (
		header []byte
		b      = make([]byte, 1)
	)
	for {
		if _, err := io.ReadFull(conn, b); err != nil {
			return nil, errors.Wrap(err, "failed to read response header")
		}
		if b[0] == '{' {
			break
		}
		if len(header) >= maxLengthDigits {
			return nil, errors.New("response header too long")
		}
		header = append(header, b[0])
	}
	responseLength, err := strconv.Atoi(string(header))
	if err != nil || responseLength < 2 {
		return nil, errors.Errorf("could not read response length %q", string(header))
	}

	responseBytes := make([]byte, responseLength)
	responseBytes[0] = '{'
	if _, err := io.ReadFull(conn, responseBytes[1:]); err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return responseBytes, nil
}
