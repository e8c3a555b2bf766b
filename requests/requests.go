// Package requests contains the requests navserver answers
package requests

// Tree - a whole tree by name
type Tree struct {
	Name string `json:"name"`
}

// Node - a single node addressed by its target
type Node struct {
	// tree name, e.g. "tutorials"
	Tree string `json:"tree"`
	// "<page>.html" or "<page>.html#<fragment>"
	Target string `json:"target"`
	// include the sub tree
	Expand bool `json:"expand"`
}

// Search - case insensitive title search
type Search struct {
	Tree  string `json:"tree"`
	Query string `json:"query"`
	// 0 means no limit
	Limit int `json:"limit"`
}

// Update - reload the source
type Update struct{}
