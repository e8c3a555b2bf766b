package navtree

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// AutoTOCPrefix fragment prefix of generated table of contents anchors
const AutoTOCPrefix = "autotoc_md"

type (
	outlineOptions struct {
		slugs        bool
		autoTOCStart int
		page         string
	}
	OutlineOption func(*outlineOptions)
)

// WithSlugs derive fragments from heading text instead of numbering them
func WithSlugs(v bool) OutlineOption {
	return func(o *outlineOptions) {
		o.slugs = v
	}
}

// WithAutoTOCStart first number used for autotoc_md fragments
func WithAutoTOCStart(v int) OutlineOption {
	return func(o *outlineOptions) {
		o.autoTOCStart = v
	}
}

// WithPage page the outline points at, defaults to "<name>.html"
func WithPage(v string) OutlineOption {
	return func(o *outlineOptions) {
		o.page = v
	}
}

func newOutlineOptions(name string, opts []OutlineOption) *outlineOptions {
	o := &outlineOptions{autoTOCStart: 1, page: name + ".html"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// outline builds a page node from a flat heading sequence. The first level 1
// heading names the page, every following heading becomes a section nested
// by level.
type outline struct {
	opts   *outlineOptions
	page   *nav.Node
	titled bool
	stack  []outlineEntry
	slugs  uniqueSlugs
	seq    int
}

type outlineEntry struct {
	node  *nav.Node
	level int
}

func newOutline(name string, opts []OutlineOption) *outline {
	o := newOutlineOptions(name, opts)
	page := nav.NewNode(name, o.page)
	return &outline{
		opts:  o,
		page:  page,
		stack: []outlineEntry{{node: page, level: 1}},
		slugs: uniqueSlugs{},
		seq:   o.autoTOCStart,
	}
}

func (o *outline) heading(level int, title, id string) {
	title = strings.TrimSpace(title)
	if level == 1 && !o.titled && len(o.page.Children) == 0 {
		o.page.Title = title
		o.titled = true
		return
	}
	if id == "" {
		if o.opts.slugs {
			id = o.slugs.next(title)
		} else {
			id = AutoTOCPrefix + strconv.Itoa(o.seq)
			o.seq++
		}
	}
	n := nav.NewNode(title, o.page.Target+nav.FragmentSeparator+id)
	if level < 2 {
		level = 2
	}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Add(n)
	o.stack = append(o.stack, outlineEntry{node: n, level: level})
}

// ParseMarkdown builds the outline of a single markdown page
func ParseMarkdown(name string, r io.Reader, opts ...OutlineOption) (*nav.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read markdown")
	}
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAttribute()))
	doc := md.Parser().Parse(text.NewReader(src))

	o := newOutline(name, opts)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var id string
		if v, ok := heading.AttributeString("id"); ok {
			switch v := v.(type) {
			case []byte:
				id = string(v)
			case string:
				id = v
			default:
				id = fmt.Sprint(v)
			}
		}
		o.heading(heading.Level, headingText(heading, src), id)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk markdown")
	}
	return nav.NewTree(name, o.page), nil
}

func headingText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		default:
			b.WriteString(headingText(c, src))
		}
	}
	return b.String()
}
