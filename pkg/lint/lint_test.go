package lint

import (
	"context"
	"os"
	"testing"

	"github.com/foomo/navserver/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func lintTree() *nav.Tree {
	return nav.NewTree("tutorials",
		nav.NewNode("Conditional operations", "conditional.html",
			nav.NewNode("Explicit Selection", "conditional.html#autotoc_md162"),
			nav.NewNode("Context-sensitive mask", "conditional.html#autotoc_md166"),
			nav.NewNode("Gone", "conditional.html#autotoc_md199"),
		),
		nav.NewNode("Missing", "missing.html"),
	)
}

func codes(issues []nav.Issue) []nav.IssueCode {
	ret := make([]nav.IssueCode, len(issues))
	for i, issue := range issues {
		ret[i] = issue.Code
	}
	return ret
}

func TestLintWithoutPages(t *testing.T) {
	tree := lintTree()
	tree.Nodes[1].Target = "conditional.html#autotoc_md162"

	report, err := New(zaptest.NewLogger(t)).Lint(context.Background(), tree)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 5, report.Nodes)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, []nav.IssueCode{nav.IssueDuplicateTarget}, codes(report.Issues))
}

func TestLintDirPages(t *testing.T) {
	l := New(zaptest.NewLogger(t), WithPages(DirPages("testdata/pages")), WithConcurrency(1))
	report, err := l.Lint(context.Background(), lintTree())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, []string{"Conditional operations", "Gone"}, report.Issues[0].Path)
	assert.Equal(t, nav.IssueUnknownTarget, report.Issues[0].Code)
	assert.Equal(t, []string{"Missing"}, report.Issues[1].Path)
	assert.Equal(t, nav.IssueUnknownTarget, report.Issues[1].Code)
}

func TestLintValidateOptions(t *testing.T) {
	l := New(zaptest.NewLogger(t), WithValidateOptions(nav.WithMaxDepth(1)))
	report, err := l.Lint(context.Background(), lintTree())
	require.NoError(t, err)
	assert.Equal(t, []nav.IssueCode{nav.IssueMaxDepth, nav.IssueMaxDepth, nav.IssueMaxDepth}, codes(report.Issues))
}

func TestLintBucketPages(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	defer bucket.Close()

	page, err := os.ReadFile("testdata/pages/conditional.html")
	require.NoError(t, err)
	require.NoError(t, bucket.WriteAll(ctx, "docs/conditional.html", page, nil))

	l := New(zaptest.NewLogger(t), WithPages(&BucketPages{Bucket: bucket, Prefix: "docs/"}))
	report, err := l.Lint(ctx, lintTree())
	require.NoError(t, err)
	assert.Equal(t, []nav.IssueCode{nav.IssueUnknownTarget, nav.IssueUnknownTarget}, codes(report.Issues))
}

func TestDirPagesStayInside(t *testing.T) {
	_, err := DirPages("testdata/pages").Open(context.Background(), "../lint_test.go")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = DirPages("testdata/pages").Open(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = DirPages("testdata/pages").Open(context.Background(), "nope.html")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLintTargetsOutsideRoot(t *testing.T) {
	tree := nav.NewTree("tutorials",
		nav.NewNode("Up", "../outside.html"),
		nav.NewNode("Abs", "/abs.html"),
		nav.NewNode("Broken", "my page.html#x"),
		nav.NewNode("Conditional operations", "conditional.html"),
	)
	l := New(zaptest.NewLogger(t), WithPages(DirPages("testdata/pages")))
	report, err := l.Lint(context.Background(), tree)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, []nav.IssueCode{nav.IssueInvalidTarget, nav.IssueInvalidTarget, nav.IssueInvalidTarget}, codes(report.Issues))
}
