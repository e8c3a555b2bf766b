package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/metrics"
	"github.com/foomo/navserver/pkg/navtree"
	"github.com/foomo/navserver/requests"
	"github.com/foomo/navserver/responses"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTreeNotFound = errors.New("tree not found")
	ErrNodeNotFound = errors.New("node not found")
)

type (
	// Repo holds the navigation trees of a source
	Repo struct {
		l                       *zap.Logger
		url                     string
		format                  navtree.Format
		poll                    bool
		pollInterval            time.Duration
		validateOptions         []nav.ValidateOption
		onLoaded                func()
		loaded                  *atomic.Bool
		history                 *History
		httpClient              *http.Client
		treesUpdateChannel      chan Snapshot
		treesUpdateDoneChannel  chan error
		updateInProgressChannel chan chan updateResponse
		directory               map[string]*Tree
		order                   []string
		directoryLock           sync.RWMutex
		snapshot                *bytes.Buffer
		snapshotLock            sync.RWMutex
		source                  []byte
	}
	Option func(*Repo)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, url string, history *History, opts ...Option) *Repo {
	inst := &Repo{
		l:                       l.Named("repo"),
		url:                     url,
		loaded:                  &atomic.Bool{},
		pollInterval:            time.Minute,
		history:                 history,
		httpClient:              http.DefaultClient,
		directory:               map[string]*Tree{},
		treesUpdateChannel:      make(chan Snapshot),
		treesUpdateDoneChannel:  make(chan error),
		updateInProgressChannel: make(chan chan updateResponse),
	}

	for _, opt := range opts {
		opt(inst)
	}

	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Repo) {
		o.httpClient = v
	}
}

// WithFormat source format, detected from the url if not set
func WithFormat(v navtree.Format) Option {
	return func(o *Repo) {
		o.format = v
	}
}

func WithPoll(v bool) Option {
	return func(o *Repo) {
		o.poll = v
	}
}

func WithPollInterval(v time.Duration) Option {
	return func(o *Repo) {
		o.pollInterval = v
	}
}

// WithValidateOptions checks every tree has to pass before it is loaded
func WithValidateOptions(v ...nav.ValidateOption) Option {
	return func(o *Repo) {
		o.validateOptions = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Getter
// ------------------------------------------------------------------------------------------------

func (r *Repo) Loaded() bool {
	return r.loaded.Load()
}

func (r *Repo) Directory() map[string]*Tree {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return r.directory
}

func (r *Repo) setDirectory(v map[string]*Tree, order []string) {
	r.directoryLock.Lock()
	defer r.directoryLock.Unlock()
	r.directory = v
	r.order = order
}

func (r *Repo) SnapshotBytes() []byte {
	r.snapshotLock.RLock()
	defer r.snapshotLock.RUnlock()
	if r.snapshot == nil {
		return nil
	}
	return r.snapshot.Bytes()
}

func (r *Repo) SetSnapshot(v *bytes.Buffer) {
	r.snapshotLock.Lock()
	defer r.snapshotLock.Unlock()
	r.snapshot = v
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) OnLoaded(fn func()) {
	r.onLoaded = fn
}

// Names of the loaded trees in source order
func (r *Repo) Names() []string {
	r.directoryLock.RLock()
	defer r.directoryLock.RUnlock()
	return append([]string(nil), r.order...)
}

// Trees summaries of all loaded trees in source order
func (r *Repo) Trees() []*responses.Tree {
	directory := r.Directory()
	names := r.Names()
	ret := make([]*responses.Tree, 0, len(names))
	for _, name := range names {
		t, ok := directory[name]
		if !ok {
			continue
		}
		ret = append(ret, &responses.Tree{
			Name:  name,
			Nodes: t.Len(),
			Depth: t.Tree.Depth(),
			Pages: t.Tree.Pages(),
		})
	}
	return ret
}

// GetTree a loaded tree by name
func (r *Repo) GetTree(name string) (*Tree, error) {
	t, ok := r.Directory()[name]
	if !ok {
		return nil, errors.Wrapf(ErrTreeNotFound, "%q", name)
	}
	return t, nil
}

// GetNode resolves a target to its node and bread crumb
func (r *Repo) GetNode(req *requests.Node) (*responses.Node, error) {
	t, n, err := r.lookup(req)
	if err != nil {
		return nil, err
	}
	path, _ := t.Path(req.Target)
	resp := &responses.Node{
		Tree: t.Name,
		Node: n,
		Path: nav.Titles(path),
	}
	if !req.Expand {
		resp.Node = nav.NewNode(n.Title, n.Target)
	}
	if parent := t.Parent(n); parent != nil {
		resp.Parent = parent.Target
	}
	return resp, nil
}

// GetPath bread crumb from the top level down to and including the node of the target
func (r *Repo) GetPath(req *requests.Node) ([]*responses.Crumb, error) {
	t, n, err := r.lookup(req)
	if err != nil {
		return nil, err
	}
	path, _ := t.Path(n.Target)
	crumbs := make([]*responses.Crumb, 0, len(path)+1)
	for _, p := range append(path, n) {
		crumbs = append(crumbs, &responses.Crumb{Title: p.Title, Target: p.Target})
	}
	return crumbs, nil
}

// GetChildren direct children of the node of the target, without their sub trees
func (r *Repo) GetChildren(req *requests.Node) ([]*nav.Node, error) {
	_, n, err := r.lookup(req)
	if err != nil {
		return nil, err
	}
	children := make([]*nav.Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = nav.NewNode(c.Title, c.Target)
	}
	return children, nil
}

// Search titles of a tree
func (r *Repo) Search(req *requests.Search) ([]*responses.Hit, error) {
	if req == nil {
		return nil, errors.New("request must not be nil")
	}
	t, err := r.GetTree(req.Tree)
	if err != nil {
		return nil, err
	}
	entries := t.Index.Search(req.Query)
	if req.Limit > 0 && len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	hits := make([]*responses.Hit, len(entries))
	for i, e := range entries {
		hits[i] = &responses.Hit{
			Title:  e.Node.Title,
			Target: e.Node.Target,
			Path:   nav.Titles(e.Path),
		}
	}
	return hits, nil
}

// WriteRepoBytes writes all trees wrapped as service response {"reply": [...]}.
// It serves from memory and falls back to the history when nothing is loaded yet.
func (r *Repo) WriteRepoBytes(ctx context.Context, w io.Writer) error {
	data := r.SnapshotBytes()
	if len(data) == 0 {
		var buf bytes.Buffer
		if err := r.history.GetCurrent(ctx, &buf); err != nil {
			return errors.Wrap(err, "failed to read snapshot from history")
		}
		data = buf.Bytes()
	}
	for _, chunk := range [][]byte{[]byte(`{"reply":`), data, []byte(`}`)} {
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, "failed to write snapshot")
		}
	}
	return nil
}

// Update reloads the source, only one update runs at a time
func (r *Repo) Update(ctx context.Context) (updateResponse *responses.Update) {
	floatSeconds := func(nanoSeconds int64) float64 {
		return float64(nanoSeconds) / float64(time.Second)
	}

	r.l.Info("update triggered")
	start := time.Now()
	repoRuntime, err := r.tryUpdate(ctx)
	updateResponse = &responses.Update{}
	updateResponse.Stats.RepoRuntime = floatSeconds(repoRuntime)

	if err != nil {
		updateResponse.Success = false
		updateResponse.ErrorMessage = err.Error()
		updateResponse.Stats.NumberOfTrees = -1
		updateResponse.Stats.NumberOfNodes = -1
		updateResponse.Stats.NumberOfTargets = -1
		if errors.Is(err, ErrUpdateRejected) {
			metrics.UpdatesRejectedCounter.WithLabelValues().Inc()
		} else {
			r.l.Error("failed to update repository", zap.Error(err))
		}
	} else {
		updateResponse.Success = true
		for _, t := range r.Directory() {
			updateResponse.Stats.NumberOfTrees++
			updateResponse.Stats.NumberOfNodes += t.Len()
			updateResponse.Stats.NumberOfTargets += len(t.Targets)
		}
	}
	updateResponse.Stats.OwnRuntime = floatSeconds(time.Since(start).Nanoseconds()) - updateResponse.Stats.RepoRuntime
	return updateResponse
}

// Start runs the update routines, restores the last snapshot and triggers the
// initial update. It blocks until ctx is done.
func (r *Repo) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	l := r.l.Named("start")

	up := make(chan bool, 1)
	g.Go(func() error {
		l.Debug("starting update routine")
		up <- true
		return r.UpdateRoutine(gCtx)
	})
	<-up

	g.Go(func() error {
		l.Debug("starting trees update routine")
		up <- true
		return r.TreesUpdateRoutine(gCtx)
	})
	<-up

	if err := r.tryToRestoreCurrent(gCtx); errors.Is(err, os.ErrNotExist) {
		l.Info("no previous snapshot")
	} else if err != nil {
		l.Warn("could not restore previous snapshot", zap.Error(err))
	} else {
		l.Info("restored previous snapshot", zap.Strings("trees", r.Names()))
	}

	if r.poll {
		g.Go(func() error {
			l.Debug("starting poll routine")
			return r.PollRoutine(gCtx)
		})
	}

	if resp := r.Update(gCtx); !resp.Success {
		l.Error("failed to update initial state",
			zap.String("error", resp.ErrorMessage),
			zap.Float64("own_runtime", resp.Stats.OwnRuntime),
			zap.Float64("repo_runtime", resp.Stats.RepoRuntime),
		)
	}

	return g.Wait()
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (r *Repo) lookup(req *requests.Node) (*Tree, *nav.Node, error) {
	if req == nil || req.Target == "" {
		return nil, nil, errors.New("request target must not be empty")
	}
	t, err := r.GetTree(req.Tree)
	if err != nil {
		return nil, nil, err
	}
	n, ok := t.Lookup(req.Target)
	if !ok {
		metrics.UnknownTargetRequests.WithLabelValues(t.Name).Inc()
		return nil, nil, errors.Wrapf(ErrNodeNotFound, "%q in tree %q", req.Target, t.Name)
	}
	return t, n, nil
}

func (r *Repo) markLoaded(l *zap.Logger) {
	if r.loaded.CompareAndSwap(false, true) {
		l.Info("initial load success", zap.Strings("trees", r.Names()))
		if r.onLoaded != nil {
			r.onLoaded()
		}
	}
}
