// Package lint checks navigation trees against the pages they point at
package lint

import (
	"context"
	"os"
	"sync"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/metrics"
	"github.com/foomo/navserver/pkg/navtree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

type (
	Linter struct {
		l               *zap.Logger
		pages           Pages
		concurrency     int
		validateOptions []nav.ValidateOption
	}
	Option func(*Linter)
)

// Report result of linting one tree
type Report struct {
	Tree   string      `json:"tree"`
	Nodes  int         `json:"nodes"`
	Pages  int         `json:"pages"`
	Issues []nav.Issue `json:"issues"`
}

// OK no issues found
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

// WithPages enables the known target check against the given pages
func WithPages(v Pages) Option {
	return func(o *Linter) {
		o.pages = v
	}
}

// WithConcurrency number of pages loaded in parallel
func WithConcurrency(v int) Option {
	return func(o *Linter) {
		if v > 0 {
			o.concurrency = v
		}
	}
}

func WithValidateOptions(v ...nav.ValidateOption) Option {
	return func(o *Linter) {
		o.validateOptions = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func New(l *zap.Logger, opts ...Option) *Linter {
	inst := &Linter{
		l:           l.Named("lint"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Lint validates the tree with unique targets and, with pages configured,
// reports every target whose page or fragment does not exist.
func (l *Linter) Lint(ctx context.Context, tree *nav.Tree) (*Report, error) {
	report := &Report{
		Tree:  tree.Name,
		Nodes: tree.Count(),
	}
	opts := append([]nav.ValidateOption{nav.WithUniqueTargets(true)}, l.validateOptions...)
	if l.pages != nil {
		anchors, err := l.anchors(ctx, validPages(tree))
		if err != nil {
			return nil, err
		}
		report.Pages = len(anchors)
		opts = append(opts, nav.WithKnownTargets(func(target nav.Target) bool {
			set, ok := anchors[target.Page]
			if !ok || set == nil {
				return false
			}
			return target.IsPage() || set.Has(target.Fragment)
		}))
	} else {
		report.Pages = len(tree.Pages())
	}

	report.Issues = nav.Check(tree, opts...)
	for _, issue := range report.Issues {
		metrics.LintIssuesCounter.WithLabelValues(tree.Name, string(issue.Code)).Inc()
	}
	l.l.Debug("linted tree",
		zap.String("tree", tree.Name),
		zap.Int("nodes", report.Nodes),
		zap.Int("issues", len(report.Issues)),
	)
	return report, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

// anchors loads all pages, a missing page maps to a nil set
func (l *Linter) anchors(ctx context.Context, pages []string) (map[string]navtree.AnchorSet, error) {
	var (
		mu  sync.Mutex
		ret = make(map[string]navtree.AnchorSet, len(pages))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, page := range pages {
		g.Go(func() error {
			set, err := l.load(gctx, page)
			if err != nil {
				return err
			}
			mu.Lock()
			ret[page] = set
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (l *Linter) load(ctx context.Context, page string) (navtree.AnchorSet, error) {
	r, err := l.pages.Open(ctx, page)
	if errors.Is(err, os.ErrNotExist) {
		l.l.Debug("page not found", zap.String("page", page))
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to open page %q", page)
	}
	defer r.Close()
	set, err := navtree.Anchors(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read anchors of %q", page)
	}
	return set, nil
}

// validPages pages of targets that parse, the others are invalid_target anyway
func validPages(tree *nav.Tree) []string {
	var (
		seen  = map[string]struct{}{}
		pages []string
	)
	_ = nav.Walk(tree.Nodes, func(n *nav.Node, path []*nav.Node) error {
		if n.IsHeading() {
			return nil
		}
		target, err := n.ParsedTarget()
		if err != nil {
			return nil
		}
		if _, ok := seen[target.Page]; !ok {
			seen[target.Page] = struct{}{}
			pages = append(pages, target.Page)
		}
		return nil
	})
	return pages
}
