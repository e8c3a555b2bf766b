package handler

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type socketClient struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newSocketClient(conn net.Conn) *socketClient {
	return &socketClient{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *socketClient) call(t *testing.T, route Route, request string) []byte {
	t.Helper()
	_, err := fmt.Fprintf(c.conn, "%s:%d%s", route, len(request), request)
	require.NoError(t, err)
	reply, err := c.read()
	require.NoError(t, err)
	return reply
}

// read "<length><json>"
func (c *socketClient) read() ([]byte, error) {
	header, err := c.reader.ReadString('{')
	if err != nil {
		return nil, err
	}
	length, err := strconv.Atoi(header[:len(header)-1])
	if err != nil {
		return nil, err
	}
	reply := make([]byte, length)
	reply[0] = '{'
	_, err = io.ReadFull(c.reader, reply[1:])
	return reply, err
}

func unwrap(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	var envelope struct {
		Reply jsoniter.RawMessage `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Reply, v))
}

func newTestSocket(t *testing.T) (*Socket, *socketClient) {
	t.Helper()
	s := NewSocket(zaptest.NewLogger(t), newTestRepo(t, "/two-trees.js"))
	server, client := net.Pipe()
	go func() {
		s.Serve(t.Context(), server)
		_ = server.Close()
	}()
	t.Cleanup(func() { _ = client.Close() })
	return s, newSocketClient(client)
}

func TestSocketRequests(t *testing.T) {
	_, c := newTestSocket(t)

	var trees []*responses.Tree
	unwrap(t, c.call(t, RouteGetTrees, `{}`), &trees)
	require.Len(t, trees, 2)
	assert.Equal(t, "tutorials", trees[0].Name)
	assert.Equal(t, "examples", trees[1].Name)

	tree := &nav.Tree{}
	unwrap(t, c.call(t, RouteGetTree, `{"name":"examples"}`), tree)
	require.Len(t, tree.Nodes, 1)
	assert.True(t, tree.Nodes[0].IsHeading())

	var crumbs []*responses.Crumb
	unwrap(t, c.call(t, RouteGetPath, `{"tree":"examples","target":"examples.html#algorithms"}`), &crumbs)
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Examples", crumbs[0].Title)
	assert.Empty(t, crumbs[0].Target)

	var hits []*responses.Hit
	unwrap(t, c.call(t, RouteSearch, `{"tree":"tutorials","query":"simd"}`), &hits)
	assert.Len(t, hits, 2)

	// errors keep the connection open
	apiErr := &responses.Error{}
	unwrap(t, c.call(t, RouteGetNode, `{"tree":"nope","target":"a.html"}`), apiErr)
	assert.Equal(t, errCodeNotFound, apiErr.Code)

	apiErr = &responses.Error{}
	unwrap(t, c.call(t, Route("nope"), `{}`), apiErr)
	assert.Equal(t, errCodeUnknownRoute, apiErr.Code)

	var repo []*nav.Tree
	unwrap(t, c.call(t, RouteGetRepo, `{}`), &repo)
	assert.Len(t, repo, 2)

	update := &responses.Update{}
	unwrap(t, c.call(t, RouteUpdate, `{}`), update)
	assert.True(t, update.Success, update.ErrorMessage)
	assert.Equal(t, 2, update.Stats.NumberOfTrees)
}

func TestSocketInvalidHeader(t *testing.T) {
	_, c := newTestSocket(t)

	_, err := fmt.Fprint(c.conn, "getTree-7{}")
	require.NoError(t, err)
	reply, err := c.read()
	require.NoError(t, err)
	apiErr := &responses.Error{}
	unwrap(t, reply, apiErr)
	assert.Equal(t, errCodeHeader, apiErr.Code)

	// the server hung up
	_, err = c.read()
	assert.Error(t, err)
}

func TestSocketOversizedRequest(t *testing.T) {
	_, c := newTestSocket(t)

	_, err := fmt.Fprint(c.conn, "getTree:4000000000{")
	require.NoError(t, err)
	reply, err := c.read()
	require.NoError(t, err)
	apiErr := &responses.Error{}
	unwrap(t, reply, apiErr)
	assert.Equal(t, errCodeHeader, apiErr.Code)
	assert.Contains(t, apiErr.Message, "exceeds")

	_, err = c.read()
	assert.Error(t, err)
}

func TestSocketAccept(t *testing.T) {
	s := NewSocket(zaptest.NewLogger(t), newTestRepo(t, "/tutorials.js"))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- s.Accept(t.Context(), ln)
	}()

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)
		node := &responses.Node{}
		unwrap(t, newSocketClient(conn).call(t, RouteGetNode, `{"tree":"tutorials","target":"intro-04.html"}`), node)
		assert.Equal(t, "intro-04.html", node.Node.Target)
		require.NoError(t, conn.Close())
	}

	require.NoError(t, ln.Close())
	assert.NoError(t, <-done)
}
