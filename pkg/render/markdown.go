package render

import (
	"io"
	"strings"

	"github.com/foomo/navserver/nav"
	"github.com/nao1215/markdown"
)

// Markdown writes a nested bullet list of links
func Markdown(w io.Writer, tree *nav.Tree, opts ...Option) error {
	o := newOptions(opts)
	md := markdown.NewMarkdown(w)
	if o.title != "" {
		md.H1(o.title)
		md.PlainText("")
	}
	err := nav.Walk(tree.Nodes, func(n *nav.Node, path []*nav.Node) error {
		label := escapeMarkdown(n.Title)
		if !n.IsHeading() {
			label = markdown.Link(label, n.Target)
		}
		md.PlainText(strings.Repeat(nav.Indent, len(path)) + "- " + label)
		return nil
	})
	if err != nil {
		return err
	}
	return md.Build()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
