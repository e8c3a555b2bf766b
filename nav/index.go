package nav

import (
	"strings"
)

// Index lookup structures for a tree, build once and read concurrently
type Index struct {
	Tree    *Tree
	Targets map[string]*Node   // target => first node pointing at it
	Pages   map[string][]*Node // page => nodes on that page in tree order
	parents map[*Node]*Node
	count   int
}

// NewIndex indexes a tree
func NewIndex(tree *Tree) (*Index, error) {
	idx := &Index{
		Tree:    tree,
		Targets: map[string]*Node{},
		Pages:   map[string][]*Node{},
		parents: map[*Node]*Node{},
	}
	err := Walk(tree.Nodes, func(n *Node, path []*Node) error {
		idx.count++
		if len(path) > 0 {
			idx.parents[n] = path[len(path)-1]
		}
		if n.IsHeading() {
			return nil
		}
		if _, ok := idx.Targets[n.Target]; !ok {
			idx.Targets[n.Target] = n
		}
		page := n.Page()
		idx.Pages[page] = append(idx.Pages[page], n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Len number of indexed nodes
func (i *Index) Len() int {
	return i.count
}

// Lookup a node by target
func (i *Index) Lookup(target string) (*Node, bool) {
	n, ok := i.Targets[target]
	return n, ok
}

// Parent of a node, nil for top level nodes
func (i *Index) Parent(n *Node) *Node {
	return i.parents[n]
}

// Path ancestors of the node with the given target, root first, excluding the node itself
func (i *Index) Path(target string) ([]*Node, bool) {
	n, ok := i.Lookup(target)
	if !ok {
		return nil, false
	}
	var path []*Node
	for p := i.parents[n]; p != nil; p = i.parents[p] {
		path = append(path, p)
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, true
}

// Search case insensitive title match in tree order
func (i *Index) Search(query string) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var entries []Entry
	_ = Walk(i.Tree.Nodes, func(n *Node, path []*Node) error {
		if strings.Contains(strings.ToLower(n.Title), query) {
			entries = append(entries, Entry{
				Node:  n,
				Path:  append([]*Node(nil), path...),
				Depth: len(path),
			})
		}
		return nil
	})
	return entries
}
