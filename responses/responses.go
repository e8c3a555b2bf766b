// Package responses contains the replies navserver sends
package responses

import (
	"fmt"

	"github.com/foomo/navserver/nav"
)

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, code:%d, message:%q", e.Status, e.Code, e.Message)
}

// NewError - a brand new error
func NewError(code int, message string) *Error {
	return NewStatusError(500, code, message)
}

// NewStatusError - an error with an explicit status
func NewStatusError(status, code int, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Stats - numbers of an update
type Stats struct {
	NumberOfTrees   int `json:"numberOfTrees"`
	NumberOfNodes   int `json:"numberOfNodes"`
	NumberOfTargets int `json:"numberOfTargets"`
	// seconds
	RepoRuntime float64 `json:"repoRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}

// Update - information about an update
type Update struct {
	// did it work or not
	Success bool `json:"success"`
	// this is for humans
	ErrorMessage string `json:"errorMessage"`
	Stats        Stats  `json:"stats"`
}

// Node - a resolved node with its bread crumb
type Node struct {
	Tree   string    `json:"tree"`
	Node   *nav.Node `json:"node"`
	Path   []string  `json:"path"`
	Parent string    `json:"parent,omitempty"`
}

// Hit - a search result
type Hit struct {
	Title  string   `json:"title"`
	Target string   `json:"target"`
	Path   []string `json:"path"`
}

// Tree - summary of a loaded tree
type Tree struct {
	Name  string   `json:"name"`
	Nodes int      `json:"nodes"`
	Depth int      `json:"depth"`
	Pages []string `json:"pages"`
}

// Crumb - one step of a bread crumb
type Crumb struct {
	Title  string `json:"title"`
	Target string `json:"target,omitempty"`
}
