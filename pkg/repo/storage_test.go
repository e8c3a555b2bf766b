package repo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func newTestBlobStorage(t *testing.T, prefix string) *BlobStorage {
	t.Helper()
	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	s := NewBlobStorageFromBucket(bucket, prefix)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestFilesystemStorage(t *testing.T) *FilesystemStorage {
	t.Helper()
	s, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStorages(t *testing.T) {
	for name, newStorage := range map[string]func(t *testing.T) Storage{
		"filesystem":  func(t *testing.T) Storage { return newTestFilesystemStorage(t) },
		"blob":        func(t *testing.T) Storage { return newTestBlobStorage(t, "") },
		"blob prefix": func(t *testing.T) Storage { return newTestBlobStorage(t, "navserver") },
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStorage(t)

			_, err := s.Read(ctx, "missing.json")
			assert.ErrorIs(t, err, os.ErrNotExist)

			require.NoError(t, s.Write(ctx, "a-1.json", []byte("one")))
			require.NoError(t, s.Write(ctx, "a-2.json", []byte("two")))
			require.NoError(t, s.Write(ctx, "b-1.json", []byte("other")))
			require.NoError(t, s.Write(ctx, "a-1.json", []byte("uno")))

			data, err := s.Read(ctx, "a-1.json")
			require.NoError(t, err)
			assert.Equal(t, []byte("uno"), data)

			keys, err := s.List(ctx, "a-")
			require.NoError(t, err)
			assert.Equal(t, []string{"a-2.json", "a-1.json"}, keys)

			require.NoError(t, s.Delete(ctx, "a-2.json"))
			require.NoError(t, s.Delete(ctx, "a-2.json"), "deleting twice is fine")

			keys, err = s.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"b-1.json", "a-1.json"}, keys)
		})
	}
}

func TestFilesystemStorageRejectsPaths(t *testing.T) {
	ctx := context.Background()
	s := newTestFilesystemStorage(t)
	assert.Error(t, s.Write(ctx, "../escape.json", []byte("x")))
	assert.Error(t, s.Write(ctx, "", []byte("x")))
	_, err := s.Read(ctx, "sub/dir.json")
	assert.Error(t, err)
}

func TestFilesystemStorageIgnoresTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestFilesystemStorage(t)
	require.NoError(t, os.WriteFile(s.dir+"/.tmp-a-3.json-123", []byte("partial"), 0o600))
	require.NoError(t, s.Write(ctx, "a-1.json", []byte("one")))
	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1.json"}, keys)
}
