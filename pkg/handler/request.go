package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/pkg/metrics"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/foomo/navserver/requests"
	"github.com/foomo/navserver/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// error codes of responses.Error
const (
	errCodeUnknownRoute = 1
	errCodeInvalidJSON  = 2
	errCodeAPI          = 3
	errCodeHeader       = 4
	errCodeNotFound     = 5
)

// executor answers requests of both transports
type executor struct {
	l      *zap.Logger
	repo   *repo.Repo
	linter *lint.Linter
}

// newRequest returns an empty request for route, nil for routes without one
func newRequest(route Route) (interface{}, bool) {
	switch route {
	case RouteGetTrees:
		return nil, true
	case RouteGetTree, RouteLint:
		return &requests.Tree{}, true
	case RouteGetNode, RouteGetPath, RouteGetChildren:
		return &requests.Node{}, true
	case RouteSearch:
		return &requests.Search{}, true
	case RouteUpdate:
		return &requests.Update{}, true
	default:
		return nil, false
	}
}

// handleJSON decodes jsonBytes into the request of route and answers it
func (e *executor) handleJSON(ctx context.Context, route Route, jsonBytes []byte, source string) interface{} {
	req, ok := newRequest(route)
	if !ok {
		e.observe(route, source, time.Now(), true)
		return responses.NewStatusError(http.StatusNotFound, errCodeUnknownRoute, "unknown handler: "+string(route))
	}
	if req != nil && len(jsonBytes) > 0 {
		if err := json.Unmarshal(jsonBytes, req); err != nil {
			e.l.Error("could not read incoming json", zap.Error(err))
			e.observe(route, source, time.Now(), true)
			return responses.NewStatusError(http.StatusBadRequest, errCodeInvalidJSON, "could not read incoming json "+err.Error())
		}
	}
	return e.handleRequest(ctx, route, req, source)
}

// handleRequest answers a decoded request and records metrics, failures are
// returned as *responses.Error
func (e *executor) handleRequest(ctx context.Context, route Route, req interface{}, source string) interface{} {
	start := time.Now()
	metrics.TreeRequestCounter.WithLabelValues(source).Inc()

	reply, err := e.executeRequest(ctx, route, req)
	e.observe(route, source, start, err != nil)
	if err != nil {
		return e.apiError(err)
	}
	return reply
}

func (e *executor) executeRequest(ctx context.Context, route Route, req interface{}) (interface{}, error) {
	switch route {
	case RouteGetTrees:
		return e.repo.Trees(), nil
	case RouteGetTree:
		t, err := e.repo.GetTree(req.(*requests.Tree).Name)
		if err != nil {
			return nil, err
		}
		return t.Tree, nil
	case RouteGetNode:
		return e.repo.GetNode(req.(*requests.Node))
	case RouteGetPath:
		return e.repo.GetPath(req.(*requests.Node))
	case RouteGetChildren:
		return e.repo.GetChildren(req.(*requests.Node))
	case RouteSearch:
		return e.repo.Search(req.(*requests.Search))
	case RouteLint:
		t, err := e.repo.GetTree(req.(*requests.Tree).Name)
		if err != nil {
			return nil, err
		}
		return e.linter.Lint(ctx, t.Tree)
	case RouteUpdate:
		return e.repo.Update(ctx), nil
	}
	return nil, errors.Errorf("unknown handler: %s", route)
}

func (e *executor) apiError(err error) *responses.Error {
	if errors.Is(err, repo.ErrTreeNotFound) || errors.Is(err, repo.ErrNodeNotFound) {
		return responses.NewStatusError(http.StatusNotFound, errCodeNotFound, err.Error())
	}
	e.l.Error("an API error occurred", zap.Error(err))
	return responses.NewError(errCodeAPI, "internal error "+err.Error())
}

func (e *executor) observe(route Route, source string, start time.Time, failed bool) {
	result := "success"
	if failed {
		result = "error"
	}
	metrics.ServiceRequestCounter.WithLabelValues(string(route), result, source).Inc()
	metrics.ServiceRequestDuration.WithLabelValues(string(route), result, source).Observe(time.Since(start).Seconds())
}

// encodeReply takes an interface and encodes it as JSON
// it returns the resulting JSON and a marshalling error
func (e *executor) encodeReply(reply interface{}) (bytes []byte, err error) {
	bytes, err = json.Marshal(map[string]interface{}{
		"reply": reply,
	})
	if err != nil {
		e.l.Error("could not encode reply", zap.Error(err))
	}
	return
}
