package nav

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON encodes the node as [title, target|null, children|null], nil
// children and children that are their own ancestors are left out
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.triple(map[*Node]bool{}))
}

func (n *Node) triple(onPath map[*Node]bool) []interface{} {
	var (
		target   interface{}
		children interface{}
	)
	if n.Target != "" {
		target = n.Target
	}
	onPath[n] = true
	var list []interface{}
	for _, child := range n.Children {
		if child == nil || onPath[child] {
			continue
		}
		list = append(list, child.triple(onPath))
	}
	delete(onPath, n)
	if len(list) > 0 {
		children = list
	}
	return []interface{}{n.Title, target, children}
}

// UnmarshalJSON decodes [title, target|null, children|null], the children
// element may be omitted
func (n *Node) UnmarshalJSON(data []byte) error {
	var parts []jsoniter.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(err, "navigation node must be an array")
	}
	if len(parts) < 2 || len(parts) > 3 {
		return errors.Errorf("navigation node must have 2 or 3 elements, got %d", len(parts))
	}
	var (
		title  string
		target *string
	)
	if err := json.Unmarshal(parts[0], &title); err != nil {
		return errors.Wrap(err, "navigation node title must be a string")
	}
	if err := json.Unmarshal(parts[1], &target); err != nil {
		return errors.Wrapf(err, "target of %q must be a string or null", title)
	}
	var children []*Node
	if len(parts) == 3 {
		if err := json.Unmarshal(parts[2], &children); err != nil {
			return errors.Wrapf(err, "children of %q", title)
		}
		for i, child := range children {
			if child == nil {
				return errors.Errorf("child %d of %q must be a node, got null", i, title)
			}
		}
	}
	n.Title = title
	n.Target = ""
	if target != nil {
		n.Target = *target
	}
	n.Children = children
	return nil
}
