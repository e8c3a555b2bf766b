// Package nav contains the data structures that describe a documentation
// navigation tree: titled nodes pointing at pages or in-page anchors.
package nav

const (
	// Indent used when dumping trees
	Indent string = "  "
	// FragmentSeparator separates page and anchor in a target
	FragmentSeparator = "#"
	// DefaultMaxDepth authoring depth of generated tutorial trees
	DefaultMaxDepth = 3
)
