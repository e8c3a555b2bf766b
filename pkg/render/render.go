// Package render writes navigation trees as markup.
package render

import (
	"io"

	"github.com/foomo/navserver/nav"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format output format
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJS       Format = "js"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
)

var ErrUnknownFormat = errors.New("unknown render format")

// Formats all output formats
func Formats() []Format {
	return []Format{FormatHTML, FormatMarkdown, FormatJS, FormatJSON, FormatText}
}

// ContentType mime type of a format
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJS:
		return "application/javascript; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

type (
	options struct {
		class string
		title string
	}
	Option func(*options)
)

// WithClass css class of the outer list in html output
func WithClass(v string) Option {
	return func(o *options) {
		o.class = v
	}
}

// WithTitle heading written before the list in html and markdown output
func WithTitle(v string) Option {
	return func(o *options) {
		o.title = v
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Render writes tree in the given format
func Render(format Format, w io.Writer, tree *nav.Tree, opts ...Option) error {
	switch format {
	case FormatHTML:
		return HTML(w, tree, opts...)
	case FormatMarkdown:
		return Markdown(w, tree, opts...)
	case FormatJS:
		return JS(w, tree)
	case FormatJSON:
		return JSON(w, tree)
	case FormatText:
		return Text(w, tree)
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}

// JSON writes the bare [[title, target, children], ...] array
func JSON(w io.Writer, tree *nav.Tree) error {
	nodes := tree.Nodes
	if nodes == nil {
		nodes = []*nav.Node{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return errors.Wrap(err, "failed to encode tree")
	}
	_, err = w.Write(data)
	return err
}
