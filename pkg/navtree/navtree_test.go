package navtree

import (
	"os"
	"strings"
	"testing"

	"github.com/foomo/navserver/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestdata(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestParseJSTutorials(t *testing.T) {
	trees, err := ParseJS(openTestdata(t, "tutorials.js"))
	require.NoError(t, err)
	require.Len(t, trees, 1)

	tree := trees[0]
	assert.Equal(t, "tutorials", tree.Name)
	require.Len(t, tree.Nodes, 6)
	assert.Equal(t, 34, tree.Count())
	assert.Equal(t, 3, tree.Depth())
	require.NoError(t, nav.Validate(tree, nav.WithUniqueTargets(true)))

	multiarch := tree.Nodes[5]
	assert.Equal(t, "Handling Multiple Architecture Targets", multiarch.Title)
	assert.Equal(t, "multiarch.html", multiarch.Target)
	dispatch := multiarch.Children[1]
	assert.Equal(t, "From static to dynamic dispatch", dispatch.Title)
	require.Len(t, dispatch.Children, 3)
	assert.Equal(t, "multiarch.html#autotoc_md188", dispatch.Children[2].Target)
	assert.True(t, dispatch.Children[2].IsLeaf())

	assert.Equal(t, "From scalar to SIMD using eve::wide", tree.Nodes[0].Children[1].Title)
}

func TestParseJSLenient(t *testing.T) {
	src := `
// generated
var a = [ [ 'It\'s "quoted"', null, [ ["leaf", "p.html#x", null], ] ], ];
/* second */
const b = [["B", "b.html"]]
`
	trees, err := ParseJS(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, "a", trees[0].Name)
	assert.Equal(t, `It's "quoted"`, trees[0].Nodes[0].Title)
	assert.True(t, trees[0].Nodes[0].IsHeading())
	assert.Equal(t, "p.html#x", trees[0].Nodes[0].Children[0].Target)
	assert.Equal(t, "b", trees[1].Name)
	assert.Equal(t, "b.html", trees[1].Nodes[0].Target)

	trees, err = ParseJS(strings.NewReader(`var c = [['say \"hi\"', null], ['tab\there \\ \'x\'', "c.html"]];`))
	require.NoError(t, err)
	assert.Equal(t, `say "hi"`, trees[0].Nodes[0].Title)
	assert.Equal(t, "tab\there \\ 'x'", trees[0].Nodes[1].Title)
}

func TestParseJSErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":          "",
		"no var":         `[["a", null, null]]`,
		"no name":        `var = []`,
		"unterminated":   `var a = [["a", null, null]`,
		"bad string":     "var a = [[\"a\n\", null, null]]",
		"number target":  `var a = [["a", 1, null]]`,
		"title not text": `var a = [[null, null, null]]`,
		"short node":     `var a = [["a"]]`,
		"not a list":     `var a = "x"`,
	} {
		_, err := ParseJS(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestParseJSErrorPosition(t *testing.T) {
	_, err := ParseJS(strings.NewReader("var a =\n[\n  [\"a\", null, null] x\n]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3:")
}

func TestParseJSON(t *testing.T) {
	tree, err := ParseJSON("nav", strings.NewReader(`[["A","a.html",[["A1","a.html#1",null]]],["B",null,null]]`))
	require.NoError(t, err)
	assert.Equal(t, "nav", tree.Name)
	assert.Equal(t, 3, tree.Count())

	tree, err = ParseJSON("nav", strings.NewReader(`{"name":"tutorials","nodes":[["A","a.html",null]]}`))
	require.NoError(t, err)
	assert.Equal(t, "tutorials", tree.Name)
	require.Len(t, tree.Nodes, 1)

	_, err = ParseJSON("nav", strings.NewReader(`[["A"]]`))
	assert.Error(t, err)

	for _, src := range []string{
		`[["A","a.html",[null]]]`,
		`[null]`,
		`{"name":"x","nodes":[["A",null,null],null]}`,
	} {
		_, err = Parse(FormatJSON, "x", strings.NewReader(src))
		assert.Error(t, err, src)
	}
}

func TestParseYAML(t *testing.T) {
	tree, err := ParseYAML("fallback", openTestdata(t, "tutorials.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "tutorials", tree.Name)
	require.Len(t, tree.Nodes, 2)
	assert.Equal(t, "intro-03.html#autotoc_md178", tree.Nodes[0].Children[1].Target)
	assert.True(t, tree.Nodes[1].IsHeading())
	assert.NoError(t, nav.Validate(tree))

	tree, err = ParseYAML("list", strings.NewReader("- title: A\n  target: a.html\n- title: B\n"))
	require.NoError(t, err)
	assert.Equal(t, "list", tree.Name)
	assert.Equal(t, 2, tree.Count())

	_, err = ParseYAML("bad", strings.NewReader("nodes: [\n"))
	assert.Error(t, err)
}

func TestParseMarkdown(t *testing.T) {
	tree, err := ParseMarkdown("conditional", openTestdata(t, "conditional.md"), WithAutoTOCStart(162))
	require.NoError(t, err)
	require.Len(t, tree.Nodes, 1)
	page := tree.Nodes[0]
	assert.Equal(t, "Conditional operations", page.Title)
	assert.Equal(t, "conditional.html", page.Target)
	require.Len(t, page.Children, 4)
	assert.Equal(t, "conditional.html#autotoc_md162", page.Children[0].Target)
	expressions := page.Children[2]
	assert.Equal(t, "Conditional Expressions", expressions.Title)
	require.Len(t, expressions.Children, 2)
	assert.Equal(t, "conditional.html#autotoc_md165", expressions.Children[0].Target)
	assert.Equal(t, "Context-sensitive mask", expressions.Children[1].Title)
	assert.Equal(t, "conditional.html#custom_mask", expressions.Children[1].Target)
	assert.Equal(t, "conditional.html#autotoc_md166", page.Children[3].Target)
	assert.NoError(t, nav.Validate(tree))
}

func TestParseMarkdownSlugs(t *testing.T) {
	src := "# Page\n\n## Über Straße\n\n## Same\n\n## Same\n"
	tree, err := ParseMarkdown("page", strings.NewReader(src), WithSlugs(true), WithPage("docs/page.html"))
	require.NoError(t, err)
	children := tree.Nodes[0].Children
	require.Len(t, children, 3)
	assert.Equal(t, "docs/page.html#uber-stra-e", children[0].Target)
	assert.Equal(t, "docs/page.html#same", children[1].Target)
	assert.Equal(t, "docs/page.html#same-1", children[2].Target)
}

func TestParseHTML(t *testing.T) {
	tree, err := ParseHTML("conditional", openTestdata(t, "conditional.html"))
	require.NoError(t, err)
	page := tree.Nodes[0]
	assert.Equal(t, "Conditional operations", page.Title)
	require.Len(t, page.Children, 4)
	assert.Equal(t, "Explicit Selection", page.Children[0].Title)
	assert.Equal(t, "conditional.html#autotoc_md162", page.Children[0].Target)
	require.Len(t, page.Children[2].Children, 2)
	assert.Equal(t, "conditional.html#autotoc_md166", page.Children[2].Children[1].Target)
	assert.Equal(t, "conditional.html#autotoc_md167", page.Children[3].Target)
}

func TestAnchors(t *testing.T) {
	anchors, err := Anchors(openTestdata(t, "conditional.html"))
	require.NoError(t, err)
	assert.Len(t, anchors, 6)
	assert.True(t, anchors.Has("autotoc_md166"))
	assert.False(t, anchors.Has("autotoc_md168"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "mask-with-alternative", Slug("Mask with alternative"))
	assert.Equal(t, "from-scalar-to-simd-using-eve-wide", Slug("From scalar to SIMD using eve::wide"))
	assert.Equal(t, "creme-brulee", Slug("  Crème   Brûlée! "))
	assert.Equal(t, "", Slug("::"))
}

func TestUniqueSlugs(t *testing.T) {
	u := uniqueSlugs{}
	var got []string
	for _, title := range []string{"A", "A", "A 1", "A", "::", "::"} {
		got = append(got, u.next(title))
	}
	assert.Equal(t, []string{"a", "a-1", "a-1-1", "a-2", "section", "section-1"}, got)
}

func TestDetectFormat(t *testing.T) {
	for filename, expected := range map[string]Format{
		"docs/tutorials.js":              FormatJS,
		"https://x.org/nav.json?rev=1":   FormatJSON,
		"nav.YML":                        FormatYAML,
		"intro.md":                       FormatMarkdown,
		"conditional.html#autotoc_md162": FormatHTML,
	} {
		format, err := DetectFormat(filename)
		require.NoError(t, err, filename)
		assert.Equal(t, expected, format, filename)
	}
	_, err := DetectFormat("nav.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, "tutorials", TreeName("docs/tutorials.js"))
}

func TestParseDispatch(t *testing.T) {
	trees, err := Parse(FormatYAML, "x", strings.NewReader("- title: A\n"))
	require.NoError(t, err)
	require.Len(t, trees, 1)
	_, err = Parse("csv", "x", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
