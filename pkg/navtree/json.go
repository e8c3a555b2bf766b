package navtree

import (
	"bytes"
	"io"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
)

// ParseJSON reads either a bare [[title, target, children], ...] array or a
// {"name": ..., "nodes": [...]} object. A name inside the document wins over
// the given one.
func ParseJSON(name string, r io.Reader) (*nav.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read navigation json")
	}
	data = bytes.TrimSpace(data)
	tree := nav.NewTree(name)
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, tree); err != nil {
			return nil, errors.Wrap(err, "failed to decode navigation tree")
		}
		if tree.Name == "" {
			tree.Name = name
		}
	} else if err := json.Unmarshal(data, &tree.Nodes); err != nil {
		return nil, errors.Wrap(err, "failed to decode navigation nodes")
	}
	if err := checkTopLevel(tree.Nodes); err != nil {
		return nil, err
	}
	return tree, nil
}

// checkTopLevel nested nulls are rejected while decoding nodes
func checkTopLevel(nodes []*nav.Node) error {
	for i, n := range nodes {
		if n == nil {
			return errors.Errorf("node %d must be a node, got null", i)
		}
	}
	return nil
}
