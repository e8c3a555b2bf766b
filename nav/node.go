package nav

import (
	"strings"
)

// Node an entry in a navigation tree
type Node struct {
	Title    string  // display text, never empty in a valid tree
	Target   string  // "<page>.html" or "<page>.html#<fragment>", empty for grouping headings
	Children []*Node // ordered sub entries
}

// NewNode constructor
func NewNode(title, target string, children ...*Node) *Node {
	return &Node{
		Title:    title,
		Target:   target,
		Children: children,
	}
}

// IsHeading a node without a target is only used for grouping
func (n *Node) IsHeading() bool {
	return n.Target == ""
}

// IsLeaf has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// ParsedTarget the structured form of Target
func (n *Node) ParsedTarget() (Target, error) {
	return ParseTarget(n.Target)
}

// Page the page part of the target
func (n *Node) Page() string {
	page, _, _ := strings.Cut(n.Target, FragmentSeparator)
	return page
}

// Add appends children and returns the node
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Clone deep copy, nil children and children that are their own ancestors
// are dropped
func (n *Node) Clone() *Node {
	return n.clone(map[*Node]bool{})
}

func (n *Node) clone(onPath map[*Node]bool) *Node {
	c := &Node{Title: n.Title, Target: n.Target}
	if n.Children != nil {
		onPath[n] = true
		c.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child == nil || onPath[child] {
				continue
			}
			c.Children = append(c.Children, child.clone(onPath))
		}
		delete(onPath, n)
	}
	return c
}
