package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foomo/navserver/pkg/repo/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(t.Context())
	return buf.String(), err
}

func TestRenderCommand(t *testing.T) {
	source := filepath.Join(mock.Dir(), "tutorials.js")
	expected, err := os.ReadFile(source)
	require.NoError(t, err)

	out, err := execute(t, "render", source, "--format", "js")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(string(expected)), strings.TrimSpace(out))

	out, err = execute(t, "render", source, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Basic Operations <intro-01.html>")

	_, err = execute(t, "render", source, "--format", "pdf")
	assert.Error(t, err)

	_, err = execute(t, "render", source, "--source-format", "toml")
	assert.Error(t, err)
}

func TestRenderCommandTwoTrees(t *testing.T) {
	out, err := execute(t, "render", filepath.Join(mock.Dir(), "two-trees.js"), "--format", "js")
	require.NoError(t, err)
	assert.Contains(t, out, "var tutorials =")
	assert.Contains(t, out, "var examples =")
}

func TestLintCommand(t *testing.T) {
	out, err := execute(t, "lint", filepath.Join(mock.Dir(), "tutorials.js"))
	require.NoError(t, err)
	assert.Contains(t, out, "tutorials: 34 nodes, 6 pages, 0 issue(s)")

	out, err = execute(t, "lint", filepath.Join(mock.Dir(), "invalid.js"))
	assert.ErrorIs(t, err, ErrLintIssues)
	assert.Contains(t, out, "empty_title")

	_, err = execute(t, "lint", filepath.Join(mock.Dir(), "tutorials.js"), "--pages", t.TempDir())
	assert.ErrorIs(t, err, ErrLintIssues)

	_, err = execute(t, "lint", filepath.Join(mock.Dir(), "missing.js"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestCreateStorage(t *testing.T) {
	v := newViper()
	v.Set("storage.type", "filesystem")
	v.Set("history.dir", t.TempDir())
	storage, err := createStorage(t.Context(), v, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NoError(t, storage.Close())

	v.Set("storage.type", "blob")
	_, err = createStorage(t.Context(), v, zaptest.NewLogger(t))
	assert.Error(t, err, "bucket required")

	v.Set("storage.blob.bucket", "ftp://bucket")
	_, err = createStorage(t.Context(), v, zaptest.NewLogger(t))
	assert.Error(t, err)

	v.Set("storage.type", "sqlite")
	_, err = createStorage(t.Context(), v, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestDetectBlobProvider(t *testing.T) {
	assert.Equal(t, "Google Cloud Storage", detectBlobProvider("gs://docs"))
	assert.Equal(t, "AWS S3", detectBlobProvider("s3://docs"))
	assert.Equal(t, "Azure Blob Storage", detectBlobProvider("azblob://docs"))
	assert.Equal(t, "unknown", detectBlobProvider("mem://"))
}
