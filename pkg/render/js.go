package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/foomo/navserver/nav"
)

const (
	jsBaseIndent  = 4
	jsLevelIndent = 2
)

// JS writes the tree as generated navigation script, the layout matches
// what documentation generators emit so generated files round trip
func JS(w io.Writer, tree *nav.Tree) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("var " + tree.Name + " =\n[\n")
	writeJSNodes(bw, tree.Nodes, 0, map[*nav.Node]bool{})
	bw.WriteString("\n];")
	return bw.Flush()
}

func writeJSNodes(w *bufio.Writer, nodes []*nav.Node, depth int, onPath map[*nav.Node]bool) {
	indent := strings.Repeat(" ", jsBaseIndent+depth*jsLevelIndent)
	for i, n := range jsNodes(nodes, onPath) {
		if i > 0 {
			w.WriteString(",\n")
		}
		target := "null"
		if !n.IsHeading() {
			target = strconv.Quote(n.Target)
		}
		w.WriteString(indent + "[ " + strconv.Quote(n.Title) + ", " + target + ", ")
		onPath[n] = true
		if len(jsNodes(n.Children, onPath)) == 0 {
			w.WriteString("null ]")
			delete(onPath, n)
			continue
		}
		w.WriteString("[\n")
		writeJSNodes(w, n.Children, depth+1, onPath)
		w.WriteString("\n" + indent + "] ]")
		delete(onPath, n)
	}
}

// jsNodes without nil entries and nodes that are their own ancestors
func jsNodes(nodes []*nav.Node, onPath map[*nav.Node]bool) []*nav.Node {
	ret := make([]*nav.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil && !onPath[n] {
			ret = append(ret, n)
		}
	}
	return ret
}
