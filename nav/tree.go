package nav

// Tree a named, ordered forest of navigation nodes
type Tree struct {
	Name  string  `json:"name"`
	Nodes []*Node `json:"nodes"`
}

// NewTree constructor
func NewTree(name string, nodes ...*Node) *Tree {
	return &Tree{
		Name:  name,
		Nodes: nodes,
	}
}

// Depth number of levels, 0 for an empty tree
func (t *Tree) Depth() int {
	depth := 0
	_ = Walk(t.Nodes, func(n *Node, path []*Node) error {
		if d := len(path) + 1; d > depth {
			depth = d
		}
		return nil
	})
	return depth
}

// Count number of nodes
func (t *Tree) Count() int {
	count := 0
	_ = Walk(t.Nodes, func(n *Node, path []*Node) error {
		count++
		return nil
	})
	return count
}

// Pages distinct pages referenced by the tree in first seen order
func (t *Tree) Pages() []string {
	var (
		seen  = map[string]struct{}{}
		pages []string
	)
	_ = Walk(t.Nodes, func(n *Node, path []*Node) error {
		if n.IsHeading() {
			return nil
		}
		page := n.Page()
		if _, ok := seen[page]; !ok {
			seen[page] = struct{}{}
			pages = append(pages, page)
		}
		return nil
	})
	return pages
}

// Clone deep copy
func (t *Tree) Clone() *Tree {
	c := &Tree{Name: t.Name, Nodes: make([]*Node, 0, len(t.Nodes))}
	for _, n := range t.Nodes {
		if n != nil {
			c.Nodes = append(c.Nodes, n.Clone())
		}
	}
	return c
}
