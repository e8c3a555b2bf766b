package render

import (
	"io"
	"strconv"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML writes nested <ul> lists, navigable nodes become links and grouping
// headings plain spans
func HTML(w io.Writer, tree *nav.Tree, opts ...Option) error {
	o := newOptions(opts)
	root := &html.Node{Type: html.DocumentNode}
	if o.title != "" {
		h := element(atom.H1)
		h.AppendChild(&html.Node{Type: html.TextNode, Data: o.title})
		root.AppendChild(h)
	}
	ul := htmlList(tree.Nodes, 0, map[*nav.Node]bool{})
	if o.class != "" {
		ul.Attr = append(ul.Attr, html.Attribute{Key: "class", Val: o.class})
	}
	root.AppendChild(ul)
	if err := html.Render(w, root); err != nil {
		return errors.Wrap(err, "failed to render html")
	}
	return nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func htmlList(nodes []*nav.Node, depth int, onPath map[*nav.Node]bool) *html.Node {
	ul := element(atom.Ul)
	for _, n := range nodes {
		if n == nil || onPath[n] {
			continue
		}
		li := element(atom.Li, html.Attribute{Key: "data-depth", Val: strconv.Itoa(depth)})
		var label *html.Node
		if n.IsHeading() {
			label = element(atom.Span)
		} else {
			label = element(atom.A, html.Attribute{Key: "href", Val: n.Target})
		}
		label.AppendChild(&html.Node{Type: html.TextNode, Data: n.Title})
		li.AppendChild(label)
		if !n.IsLeaf() {
			onPath[n] = true
			li.AppendChild(htmlList(n.Children, depth+1, onPath))
			delete(onPath, n)
		}
		ul.AppendChild(li)
	}
	return ul
}
