// Package client talks to a navserver over http or its socket protocol
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/handler"
	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/requests"
	"github.com/foomo/navserver/responses"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transport sends a request to a route and decodes the reply into response
type Transport interface {
	Call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error
	Close()
}

// Client a navserver client
type Client struct {
	t Transport
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(t Transport) *Client {
	return &Client{t: t}
}

// NewHTTPClient server is the base url including the base path, e.g.
// http://localhost:8080/navserver
func NewHTTPClient(server string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return New(NewHTTPTransport(server, client))
}

// NewSocketClient keeps up to poolSize connections to server (host:port)
func NewSocketClient(server string, poolSize int, waitTimeout time.Duration) *Client {
	return New(NewSocketTransport(server, poolSize, waitTimeout))
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Update tell the server to update itself
func (c *Client) Update(ctx context.Context) (*responses.Update, error) {
	response := &responses.Update{}
	if err := c.t.Call(ctx, handler.RouteUpdate, &requests.Update{}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetTrees summaries of all loaded trees
func (c *Client) GetTrees(ctx context.Context) ([]*responses.Tree, error) {
	var response []*responses.Tree
	if err := c.t.Call(ctx, handler.RouteGetTrees, struct{}{}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) GetTree(ctx context.Context, name string) (*nav.Tree, error) {
	response := &nav.Tree{}
	if err := c.t.Call(ctx, handler.RouteGetTree, &requests.Tree{Name: name}, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) GetNode(ctx context.Context, request *requests.Node) (*responses.Node, error) {
	response := &responses.Node{}
	if err := c.t.Call(ctx, handler.RouteGetNode, request, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetPath bread crumb of a target
func (c *Client) GetPath(ctx context.Context, tree, target string) ([]*responses.Crumb, error) {
	var response []*responses.Crumb
	if err := c.t.Call(ctx, handler.RouteGetPath, &requests.Node{Tree: tree, Target: target}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) GetChildren(ctx context.Context, tree, target string) ([]*nav.Node, error) {
	var response []*nav.Node
	if err := c.t.Call(ctx, handler.RouteGetChildren, &requests.Node{Tree: tree, Target: target}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) Search(ctx context.Context, request *requests.Search) ([]*responses.Hit, error) {
	var response []*responses.Hit
	if err := c.t.Call(ctx, handler.RouteSearch, request, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Lint a loaded tree on the server
func (c *Client) Lint(ctx context.Context, name string) (*lint.Report, error) {
	response := &lint.Report{}
	if err := c.t.Call(ctx, handler.RouteLint, &requests.Tree{Name: name}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetRepo all trees at once
func (c *Client) GetRepo(ctx context.Context) ([]*nav.Tree, error) {
	var response []*nav.Tree
	if err := c.t.Call(ctx, handler.RouteGetRepo, struct{}{}, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *Client) Close() {
	c.t.Close()
}
