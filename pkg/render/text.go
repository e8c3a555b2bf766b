package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/foomo/navserver/nav"
)

// Text writes an indented outline, one node per line
func Text(w io.Writer, tree *nav.Tree) error {
	bw := bufio.NewWriter(w)
	err := nav.Walk(tree.Nodes, func(n *nav.Node, path []*nav.Node) error {
		bw.WriteString(strings.Repeat(nav.Indent, len(path)))
		bw.WriteString(n.Title)
		if !n.IsHeading() {
			bw.WriteString(" <" + n.Target + ">")
		}
		bw.WriteByte('\n')
		return nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
