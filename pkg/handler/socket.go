package handler

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/pkg/metrics"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/foomo/navserver/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// maxHeaderLength "<route>:<length>" must fit
	maxHeaderLength = 128
	// maxJSONLength upper bound for a request body
	maxJSONLength = 1 << 20
)

type (
	Socket struct {
		executor
		readTimeout time.Duration
	}
	SocketOption func(*Socket)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewSocket returns a shiny new socket server
func NewSocket(l *zap.Logger, repo *repo.Repo, opts ...SocketOption) *Socket {
	inst := &Socket{
		executor: executor{
			l:    l.Named("socket"),
			repo: repo,
		},
	}
	for _, opt := range opts {
		opt(inst)
	}
	if inst.linter == nil {
		inst.linter = lint.New(inst.l)
	}
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// SocketWithReadTimeout closes connections that do not send a complete
// request in time, 0 waits forever
func SocketWithReadTimeout(v time.Duration) SocketOption {
	return func(o *Socket) {
		o.readTimeout = v
	}
}

func SocketWithLinter(v *lint.Linter) SocketOption {
	return func(o *Socket) {
		o.linter = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Serve answers requests "<route>:<length>{json}" on conn with "<length><json>"
// until the client closes the connection or sends an invalid request
func (h *Socket) Serve(ctx context.Context, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				if !errors.Is(err, io.EOF) {
					h.l.Error("panic in handle connection", zap.Error(err))
				}
			} else {
				h.l.Error("panic in handle connection", zap.String("error", fmt.Sprint(r)))
			}
		}
	}()

	remote := conn.RemoteAddr().String()
	h.l.Debug("handling connection", zap.String("remote", remote))
	metrics.NumSocketsGauge.WithLabelValues(remote).Inc()
	defer metrics.NumSocketsGauge.WithLabelValues(remote).Dec()

	reader := bufio.NewReader(conn)
	for {
		if h.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}
		header, err := h.readHeader(reader)
		if errors.Is(err, io.EOF) && header == "" {
			h.l.Debug("looks like the client closed the connection")
			return
		} else if err != nil {
			h.l.Debug("could not read header", zap.Error(err))
			return
		}

		route, jsonLength, err := h.extractRouteAndJSONLength(header)
		if err != nil {
			h.l.Error("invalid request could not read header", zap.Error(err))
			h.writeReply(conn, responses.NewStatusError(http.StatusBadRequest, errCodeHeader, "invalid header "+err.Error()))
			return
		}
		h.l.Debug("found json", zap.Int("length", jsonLength))

		// the opening "{" has been consumed with the header
		jsonBytes := make([]byte, jsonLength)
		jsonBytes[0] = '{'
		if _, err := io.ReadFull(reader, jsonBytes[1:]); err != nil {
			h.l.Error("could not read json - giving up with this client connection", zap.Error(err))
			return
		}

		if !h.writeResponse(conn, h.execute(ctx, route, jsonBytes)) {
			return
		}
		// note: connection remains open
	}
}

// Accept serves every connection of ln until ctx is done
func (h *Socket) Accept(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		// this blocks until connection or error
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			h.l.Error("could not accept connection", zap.Error(err))
			continue
		}

		// a goroutine handles conn so that the loop can accept other connections
		go func() {
			h.l.Debug("accepted connection", zap.String("source", conn.RemoteAddr().String()))
			h.Serve(ctx, conn)
			if err := conn.Close(); err != nil {
				h.l.Warn("failed to close connection", zap.Error(err))
			}
		}()
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// readHeader reads up to and including the "{" that starts the json
func (h *Socket) readHeader(reader *bufio.Reader) (string, error) {
	var header strings.Builder
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return header.String(), err
		}
		if b == '{' {
			return header.String(), nil
		}
		if header.Len() >= maxHeaderLength {
			return header.String(), errors.New("header too long")
		}
		header.WriteByte(b)
	}
}

func (h *Socket) extractRouteAndJSONLength(header string) (route Route, jsonLength int, err error) {
	headerParts := strings.Split(header, ":")
	if len(headerParts) != 2 {
		return "", 0, errors.Errorf("invalid header %q", header)
	}
	jsonLength, err = strconv.Atoi(headerParts[1])
	if err != nil {
		return "", 0, errors.Errorf("could not parse length in header: %q", header)
	}
	if jsonLength < 2 {
		return "", 0, errors.Errorf("json length %d too short in header: %q", jsonLength, header)
	}
	if jsonLength > maxJSONLength {
		return "", 0, errors.Errorf("json length %d exceeds %d in header: %q", jsonLength, maxJSONLength, header)
	}
	return Route(headerParts[0]), jsonLength, nil
}

func (h *Socket) execute(ctx context.Context, route Route, jsonBytes []byte) []byte {
	h.l.Debug("incoming json buffer", zap.Int("length", len(jsonBytes)))

	if route == RouteGetRepo {
		var b bytes.Buffer
		if err := h.repo.WriteRepoBytes(ctx, &b); err != nil {
			h.l.Error("could not write repo", zap.Error(err))
			return h.encodeError(responses.NewStatusError(http.StatusServiceUnavailable, errCodeAPI, err.Error()))
		}
		return b.Bytes()
	}

	reply, err := h.encodeReply(h.handleJSON(ctx, route, jsonBytes, sourceSocketServer))
	if err != nil {
		h.l.Error("socket execute failed", zap.Error(err))
		return h.encodeError(responses.NewError(errCodeAPI, "could not encode reply"))
	}
	return reply
}

func (h *Socket) encodeError(e *responses.Error) []byte {
	reply, _ := h.encodeReply(e)
	return reply
}

func (h *Socket) writeReply(conn net.Conn, e *responses.Error) {
	h.writeResponse(conn, h.encodeError(e))
}

func (h *Socket) writeResponse(conn net.Conn, reply []byte) bool {
	headerBytes := []byte(strconv.Itoa(len(reply)))
	reply = append(headerBytes, reply...)
	h.l.Debug("replying", zap.Int("length", len(reply)))
	n, writeError := conn.Write(reply)
	if writeError != nil {
		h.l.Error("could not write reply", zap.Error(writeError))
		return false
	}
	if n < len(reply) {
		h.l.Error("write too short",
			zap.Int("got", n),
			zap.Int("expected", len(reply)),
		)
		return false
	}
	h.l.Debug("replied. waiting for next request on open connection")
	return true
}
