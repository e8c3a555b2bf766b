package repo

import (
	"github.com/foomo/navserver/nav"
)

// Tree a loaded, indexed navigation tree. Loaded trees are shared between
// requests and must not be modified.
type Tree struct {
	*nav.Index
	Name string
}

func newTree(t *nav.Tree) (*Tree, error) {
	idx, err := nav.NewIndex(t)
	if err != nil {
		return nil, err
	}
	return &Tree{
		Index: idx,
		Name:  t.Name,
	}, nil
}

// Snapshot all trees of a source in source order, this is what the history stores
type Snapshot []*nav.Tree
