package nav

import (
	"github.com/pkg/errors"
)

var (
	// SkipChildren returned from a WalkFunc to not descend into the current node
	SkipChildren = errors.New("skip children")
	// ErrCycle a node is its own ancestor
	ErrCycle = errors.New("cycle in navigation tree")
)

// WalkFunc is called for every node with the chain of its ancestors, root
// first. path is reused between calls and must be copied to be retained.
type WalkFunc func(n *Node, path []*Node) error

// Entry a node with its position in the tree
type Entry struct {
	Node  *Node
	Path  []*Node
	Depth int
}

// Walk visits nodes depth first in pre-order
func Walk(nodes []*Node, fn WalkFunc) error {
	path := make([]*Node, 0, DefaultMaxDepth)
	for _, n := range nodes {
		if err := walk(n, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(n *Node, path []*Node, fn WalkFunc) error {
	if n == nil {
		return nil
	}
	for _, ancestor := range path {
		if ancestor == n {
			return errors.Wrapf(ErrCycle, "node %q", n.Title)
		}
	}
	if err := fn(n, path); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	path = append(path, n)
	for _, child := range n.Children {
		if err := walk(child, path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Flatten lists all nodes in pre-order
func Flatten(nodes []*Node) ([]Entry, error) {
	var entries []Entry
	err := Walk(nodes, func(n *Node, path []*Node) error {
		entries = append(entries, Entry{
			Node:  n,
			Path:  append([]*Node(nil), path...),
			Depth: len(path),
		})
		return nil
	})
	return entries, err
}

// Titles the titles of a path, handy for bread crumbs
func Titles(path []*Node) []string {
	titles := make([]string, len(path))
	for i, n := range path {
		titles[i] = n.Title
	}
	return titles
}
