package client

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
)

var ErrPoolClosed = errors.New("connection pool has been drained, client is dead")

// connectionPool hands out at most size connections, idle ones are reused
type connectionPool struct {
	server string
	dialer net.Dialer
	slots  chan struct{}
	idle   chan net.Conn
	closed bool
	lock   sync.RWMutex
}

func newConnectionPool(server string, size int) *connectionPool {
	if size < 1 {
		size = 1
	}
	return &connectionPool{
		server: server,
		slots:  make(chan struct{}, size),
		idle:   make(chan net.Conn, size),
	}
}

func (p *connectionPool) get(ctx context.Context) (net.Conn, error) {
	if p.isClosed() {
		return nil, ErrPoolClosed
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.slots <- struct{}{}:
	}
	select {
	case conn := <-p.idle:
		return conn, nil
	default:
	}
	conn, err := p.dialer.DialContext(ctx, "tcp", p.server)
	if err != nil {
		<-p.slots
		return nil, err
	}
	return conn, nil
}

// put returns conn, connections that failed are closed
func (p *connectionPool) put(conn net.Conn, err error) {
	defer func() { <-p.slots }()
	p.lock.RLock()
	defer p.lock.RUnlock()
	if err != nil || p.closed {
		_ = conn.Close()
		return
	}
	select {
	case p.idle <- conn:
	default:
		_ = conn.Close()
	}
}

func (p *connectionPool) close() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for {
		select {
		case conn := <-p.idle:
			_ = conn.Close()
		default:
			return
		}
	}
}

func (p *connectionPool) isClosed() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.closed
}
