package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditionalTree() *Tree {
	return NewTree("tutorials",
		NewNode("Basic Operations", "intro-01.html",
			NewNode("Initial problem", "intro-01.html#autotoc_md168"),
			NewNode("Conclusion", "intro-01.html#autotoc_md172"),
		),
		NewNode("Conditional operations", "conditional.html",
			NewNode("Explicit Selection", "conditional.html#autotoc_md162"),
			NewNode("Conditional Expressions", "conditional.html#autotoc_md164",
				NewNode("Mask with alternative", "conditional.html#autotoc_md165"),
				NewNode("Context-sensitive mask", "conditional.html#autotoc_md166"),
			),
			NewNode("Conclusion", "conditional.html#autotoc_md167"),
		),
	)
}

func TestParseTarget(t *testing.T) {
	target, err := ParseTarget("multiarch.html#autotoc_md186")
	require.NoError(t, err)
	assert.Equal(t, "multiarch.html", target.Page)
	assert.Equal(t, "autotoc_md186", target.Fragment)
	assert.False(t, target.IsPage())
	assert.Equal(t, "multiarch.html#autotoc_md186", target.String())

	target, err = ParseTarget("intro-02.html")
	require.NoError(t, err)
	assert.True(t, target.IsPage())
	assert.Equal(t, "intro-02.html", target.String())

	target, err = ParseTarget("group/sub.html#a")
	require.NoError(t, err)
	assert.Equal(t, "group/sub.html", target.Page)

	for _, bad := range []string{"", "#frag", "intro.md", "intro.html#", "intro.html#a b", "my page.html", "/abs.html", "../outside.html", "api/../../up.html#x"} {
		_, err := ParseTarget(bad)
		assert.ErrorIs(t, err, ErrInvalidTarget, bad)
	}
}

func TestTreeStats(t *testing.T) {
	tree := conditionalTree()
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, 9, tree.Count())
	assert.Equal(t, []string{"intro-01.html", "conditional.html"}, tree.Pages())
	assert.Equal(t, 0, NewTree("empty").Depth())
}

func TestWalkOrder(t *testing.T) {
	var titles []string
	err := Walk(conditionalTree().Nodes, func(n *Node, path []*Node) error {
		titles = append(titles, n.Title)
		if n.Title == "Conditional Expressions" {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Basic Operations", "Initial problem", "Conclusion",
		"Conditional operations", "Explicit Selection", "Conditional Expressions", "Conclusion",
	}, titles)
}

func TestWalkCycle(t *testing.T) {
	root := NewNode("root", "a.html")
	child := NewNode("child", "a.html#b")
	root.Add(child)
	child.Add(root)
	err := Walk([]*Node{root}, func(n *Node, path []*Node) error { return nil })
	assert.ErrorIs(t, err, ErrCycle)
}

func TestFlatten(t *testing.T) {
	entries, err := Flatten(conditionalTree().Nodes)
	require.NoError(t, err)
	require.Len(t, entries, 9)
	mask := entries[6]
	assert.Equal(t, "Mask with alternative", mask.Node.Title)
	assert.Equal(t, 2, mask.Depth)
	assert.Equal(t, []string{"Conditional operations", "Conditional Expressions"}, Titles(mask.Path))
}

func TestIndex(t *testing.T) {
	idx, err := NewIndex(conditionalTree())
	require.NoError(t, err)
	assert.Equal(t, 9, idx.Len())

	n, ok := idx.Lookup("conditional.html#autotoc_md166")
	require.True(t, ok)
	assert.Equal(t, "Context-sensitive mask", n.Title)
	assert.Equal(t, "Conditional Expressions", idx.Parent(n).Title)

	path, ok := idx.Path("conditional.html#autotoc_md166")
	require.True(t, ok)
	assert.Equal(t, []string{"Conditional operations", "Conditional Expressions"}, Titles(path))

	path, ok = idx.Path("intro-01.html")
	require.True(t, ok)
	assert.Empty(t, path)

	_, ok = idx.Lookup("nope.html")
	assert.False(t, ok)

	assert.Len(t, idx.Pages["conditional.html"], 6)

	found := idx.Search("conclusion")
	require.Len(t, found, 2)
	assert.Equal(t, "intro-01.html#autotoc_md172", found[0].Node.Target)
	assert.Empty(t, idx.Search("  "))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(conditionalTree()))

	tree := conditionalTree()
	tree.Nodes[0].Children[0].Title = " "
	tree.Nodes[0].Children[1].Target = "intro-01.md"
	tree.Nodes[1].Children[1].Children[0].Add(NewNode("Too deep", "conditional.html#deep"))
	tree.Nodes = append(tree.Nodes, NewNode("Grouping", ""))

	err := Validate(tree)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	codes := make([]IssueCode, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Equal(t, []IssueCode{IssueEmptyTitle, IssueInvalidTarget, IssueMaxDepth}, codes)
	assert.Equal(t, []string{"Basic Operations", "#0"}, verr.Issues[0].Path)
	assert.Contains(t, err.Error(), "3 issue(s)")

	assert.Len(t, Check(tree, WithMaxDepth(0), WithKnownTargets(func(Target) bool { return true })), 2)
}

func TestValidateCycleAndDuplicates(t *testing.T) {
	root := NewNode("root", "a.html")
	root.Add(NewNode("dup", "a.html"), root)
	issues := Check(NewTree("cyclic", root), WithUniqueTargets(true))
	require.Len(t, issues, 2)
	assert.Equal(t, IssueDuplicateTarget, issues[0].Code)
	assert.Equal(t, IssueCycle, issues[1].Code)
}

func TestValidateKnownTargets(t *testing.T) {
	known := map[string]bool{"intro-01.html": true}
	issues := Check(conditionalTree(), WithKnownTargets(func(target Target) bool {
		return known[target.Page]
	}))
	assert.Len(t, issues, 6)
	for _, issue := range issues {
		assert.Equal(t, IssueUnknownTarget, issue.Code)
	}
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(conditionalTree().Nodes[0])
	require.NoError(t, err)
	assert.JSONEq(t, `["Basic Operations","intro-01.html",[
		["Initial problem","intro-01.html#autotoc_md168",null],
		["Conclusion","intro-01.html#autotoc_md172",null]
	]]`, string(data))

	var n Node
	require.NoError(t, json.Unmarshal([]byte(`["Group",null,[["Leaf","a.html#x",null],["Short","b.html"]]]`), &n))
	assert.True(t, n.IsHeading())
	require.Len(t, n.Children, 2)
	assert.Equal(t, "b.html", n.Children[1].Target)
	assert.True(t, n.Children[1].IsLeaf())

	assert.Error(t, json.Unmarshal([]byte(`["only title"]`), &n))
	assert.Error(t, json.Unmarshal([]byte(`{"title":"x"}`), &n))
	assert.Error(t, json.Unmarshal([]byte(`["t",42,null]`), &n))
	assert.Error(t, json.Unmarshal([]byte(`["A","a.html",[null]]`), &n))
}

func TestClone(t *testing.T) {
	tree := conditionalTree()
	c := tree.Clone()
	c.Nodes[1].Children[0].Title = "changed"
	assert.Equal(t, "Explicit Selection", tree.Nodes[1].Children[0].Title)
	assert.Equal(t, tree.Count(), c.Count())
}

func TestCyclicCopies(t *testing.T) {
	a := NewNode("A", "a.html")
	b := NewNode("B", "b.html#x", a)
	a.Add(b, nil)

	c := a.Clone()
	require.Len(t, c.Children, 1)
	assert.Equal(t, "B", c.Children[0].Title)
	assert.Empty(t, c.Children[0].Children)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `["A","a.html",[["B","b.html#x",null]]]`, string(data))

	tree := NewTree("t", nil, a).Clone()
	require.Len(t, tree.Nodes, 1)
}
