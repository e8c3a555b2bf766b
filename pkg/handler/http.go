package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/pkg/render"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/foomo/navserver/requests"
	"github.com/foomo/navserver/responses"
	httputils "github.com/foomo/keel/utils/net/http"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultBasePath = "/navserver"

type (
	HTTP struct {
		executor
		basePath string
		router   chi.Router
	}
	HTTPOption func(*HTTP)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTP returns a shiny new web server
func NewHTTP(l *zap.Logger, repo *repo.Repo, opts ...HTTPOption) http.Handler {
	inst := &HTTP{
		executor: executor{
			l:    l.Named("http"),
			repo: repo,
		},
		basePath: DefaultBasePath,
	}

	for _, opt := range opts {
		opt(inst)
	}
	if inst.linter == nil {
		inst.linter = lint.New(inst.l)
	}
	inst.basePath = strings.TrimSuffix(inst.basePath, "/")

	router := chi.NewRouter()
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputils.ServerError(inst.l, w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	})
	if inst.basePath == "" {
		inst.routes(router)
	} else {
		router.Route(inst.basePath, inst.routes)
	}
	inst.router = router

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithBasePath(v string) HTTPOption {
	return func(o *HTTP) {
		o.basePath = v
	}
}

// WithLinter used by the lint endpoint, e.g. one that knows the generated pages
func WithLinter(v *lint.Linter) HTTPOption {
	return func(o *HTTP) {
		o.linter = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *HTTP) routes(r chi.Router) {
	r.Get("/trees", h.getTrees)
	r.Route("/trees/{name}", func(r chi.Router) {
		r.Get("/", h.getTree)
		r.Get("/render/{format}", h.renderTree)
		r.Get("/node", h.nodeRoute(RouteGetNode))
		r.Get("/path", h.nodeRoute(RouteGetPath))
		r.Get("/children", h.nodeRoute(RouteGetChildren))
		r.Get("/search", h.search)
		r.Get("/lint", h.lint)
	})
	r.Get("/repo", h.getRepo)
	r.Post("/update", h.update)
	// json body requests, same as the socket protocol
	r.Post("/{route}", h.postRoute)
}

func (h *HTTP) getTrees(w http.ResponseWriter, r *http.Request) {
	h.writeReply(w, h.handleRequest(r.Context(), RouteGetTrees, nil, sourceWebServer))
}

func (h *HTTP) getTree(w http.ResponseWriter, r *http.Request) {
	req := &requests.Tree{Name: chi.URLParam(r, "name")}
	h.writeReply(w, h.handleRequest(r.Context(), RouteGetTree, req, sourceWebServer))
}

func (h *HTTP) nodeRoute(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		req := &requests.Node{
			Tree:   chi.URLParam(r, "name"),
			Target: query.Get("target"),
		}
		if req.Target == "" {
			httputils.BadRequestServerError(h.l, w, r, errors.New("missing target parameter"))
			return
		}
		if v := query.Get("expand"); v != "" {
			expand, err := strconv.ParseBool(v)
			if err != nil {
				httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "invalid expand parameter"))
				return
			}
			req.Expand = expand
		}
		h.writeReply(w, h.handleRequest(r.Context(), route, req, sourceWebServer))
	}
}

func (h *HTTP) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &requests.Search{
		Tree:  chi.URLParam(r, "name"),
		Query: query.Get("q"),
	}
	if strings.TrimSpace(req.Query) == "" {
		httputils.BadRequestServerError(h.l, w, r, errors.New("missing q parameter"))
		return
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			httputils.BadRequestServerError(h.l, w, r, errors.Errorf("invalid limit parameter %q", v))
			return
		}
		req.Limit = limit
	}
	h.writeReply(w, h.handleRequest(r.Context(), RouteSearch, req, sourceWebServer))
}

func (h *HTTP) lint(w http.ResponseWriter, r *http.Request) {
	req := &requests.Tree{Name: chi.URLParam(r, "name")}
	h.writeReply(w, h.handleRequest(r.Context(), RouteLint, req, sourceWebServer))
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) {
	h.writeReply(w, h.handleRequest(r.Context(), RouteUpdate, &requests.Update{}, sourceWebServer))
}

func (h *HTTP) renderTree(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	format := render.Format(chi.URLParam(r, "format"))
	t, err := h.repo.GetTree(chi.URLParam(r, "name"))
	if err != nil {
		h.observe(RouteRender, sourceWebServer, start, true)
		h.writeReply(w, h.apiError(err))
		return
	}

	var opts []render.Option
	if class := r.URL.Query().Get("class"); class != "" {
		opts = append(opts, render.WithClass(class))
	}
	if title := r.URL.Query().Get("title"); title != "" {
		opts = append(opts, render.WithTitle(title))
	}

	// render into a buffer, a failure must not leave a half written body
	var buf bytes.Buffer
	if err := render.Render(format, &buf, t.Tree, opts...); errors.Is(err, render.ErrUnknownFormat) {
		h.observe(RouteRender, sourceWebServer, start, true)
		httputils.BadRequestServerError(h.l, w, r, err)
		return
	} else if err != nil {
		h.observe(RouteRender, sourceWebServer, start, true)
		httputils.ServerError(h.l, w, r, http.StatusInternalServerError, err)
		return
	}
	h.observe(RouteRender, sourceWebServer, start, false)
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = buf.WriteTo(w)
}

func (h *HTTP) getRepo(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.repo.WriteRepoBytes(r.Context(), &buf); err != nil {
		httputils.ServerError(h.l, w, r, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = buf.WriteTo(w)
}

func (h *HTTP) postRoute(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		httputils.BadRequestServerError(h.l, w, r, errors.New("empty request body"))
		return
	}
	jsonBytes, err := io.ReadAll(r.Body)
	if err != nil {
		httputils.BadRequestServerError(h.l, w, r, errors.Wrap(err, "failed to read incoming request"))
		return
	}
	route := Route(chi.URLParam(r, "route"))
	if route == RouteGetRepo {
		h.getRepo(w, r)
		return
	}
	h.writeReply(w, h.handleJSON(r.Context(), route, jsonBytes, sourceWebServer))
}

func (h *HTTP) writeReply(w http.ResponseWriter, reply interface{}) {
	status := http.StatusOK
	if e, ok := reply.(*responses.Error); ok {
		status = e.Status
	}
	data, err := h.encodeReply(reply)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
