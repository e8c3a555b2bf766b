package nav

import (
	"fmt"
	"strings"
)

// IssueCode classifies validation issues
type IssueCode string

const (
	IssueEmptyTitle      IssueCode = "empty_title"
	IssueInvalidTarget   IssueCode = "invalid_target"
	IssueMaxDepth        IssueCode = "max_depth"
	IssueCycle           IssueCode = "cycle"
	IssueDuplicateTarget IssueCode = "duplicate_target"
	IssueUnknownTarget   IssueCode = "unknown_target"
)

// Issue a single structural problem in a tree
type Issue struct {
	Path    []string  `json:"path"`
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", strings.Join(i.Path, " > "), i.Message, i.Code)
}

// ValidationError holds every issue found in a tree
type ValidationError struct {
	Tree   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("tree %q has %d issue(s)", e.Tree, len(e.Issues)))
	for _, issue := range e.Issues {
		lines = append(lines, "  "+issue.String())
	}
	return strings.Join(lines, "\n")
}

type (
	validateOptions struct {
		maxDepth      int
		uniqueTargets bool
		knownTargets  func(target Target) bool
	}
	ValidateOption func(*validateOptions)
)

// WithMaxDepth 0 disables the check
func WithMaxDepth(v int) ValidateOption {
	return func(o *validateOptions) {
		o.maxDepth = v
	}
}

func WithUniqueTargets(v bool) ValidateOption {
	return func(o *validateOptions) {
		o.uniqueTargets = v
	}
}

// WithKnownTargets reports targets for which fn returns false
func WithKnownTargets(fn func(target Target) bool) ValidateOption {
	return func(o *validateOptions) {
		o.knownTargets = fn
	}
}

// Validate checks titles, targets, depth and acyclicity. It returns nil or a
// *ValidationError.
func Validate(tree *Tree, opts ...ValidateOption) error {
	issues := Check(tree, opts...)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Tree: tree.Name, Issues: issues}
}

// Check returns all issues of a tree
func Check(tree *Tree, opts ...ValidateOption) []Issue {
	o := &validateOptions{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(o)
	}
	c := &checker{
		opts:    o,
		onPath:  map[*Node]bool{},
		targets: map[string]bool{},
	}
	for i, n := range tree.Nodes {
		c.check(n, nil, i)
	}
	return c.issues
}

type checker struct {
	opts    *validateOptions
	onPath  map[*Node]bool
	targets map[string]bool
	issues  []Issue
}

func (c *checker) report(path []string, code IssueCode, format string, args ...interface{}) {
	c.issues = append(c.issues, Issue{
		Path:    append([]string(nil), path...),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) check(n *Node, parentPath []string, position int) {
	label := fmt.Sprintf("#%d", position)
	if n != nil && strings.TrimSpace(n.Title) != "" {
		label = n.Title
	}
	path := append(parentPath, label)

	if n == nil {
		c.report(path, IssueEmptyTitle, "node is nil")
		return
	}
	if c.onPath[n] {
		c.report(path, IssueCycle, "node is its own ancestor")
		return
	}
	if strings.TrimSpace(n.Title) == "" {
		c.report(path, IssueEmptyTitle, "title must not be empty")
	}
	if c.opts.maxDepth > 0 && len(path) > c.opts.maxDepth {
		c.report(path, IssueMaxDepth, "depth %d exceeds %d", len(path), c.opts.maxDepth)
	}
	if !n.IsHeading() {
		target, err := ParseTarget(n.Target)
		switch {
		case err != nil:
			c.report(path, IssueInvalidTarget, "%s", err.Error())
		case c.opts.knownTargets != nil && !c.opts.knownTargets(target):
			c.report(path, IssueUnknownTarget, "target %q does not resolve", n.Target)
		}
		if c.opts.uniqueTargets {
			if c.targets[n.Target] {
				c.report(path, IssueDuplicateTarget, "target %q is used more than once", n.Target)
			}
			c.targets[n.Target] = true
		}
	}

	c.onPath[n] = true
	for i, child := range n.Children {
		c.check(child, path[:len(path):len(path)], i)
	}
	delete(c.onPath, n)
}
