package repo

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const snapshotContentType = "application/json"

// BlobStorage keeps snapshots in a cloud bucket (gs://, s3://, azblob://, mem://)
type BlobStorage struct {
	bucket *blob.Bucket
	prefix string
}

// NewBlobStorage opens bucketURL, every key is stored below prefix
func NewBlobStorage(ctx context.Context, bucketURL, prefix string) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %q", bucketURL)
	}
	return NewBlobStorageFromBucket(bucket, prefix), nil
}

// NewBlobStorageFromBucket wraps an open bucket
func NewBlobStorageFromBucket(bucket *blob.Bucket, prefix string) *BlobStorage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BlobStorage{
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *BlobStorage) key(key string) string {
	return s.prefix + key
}

func (s *BlobStorage) Write(ctx context.Context, key string, data []byte) error {
	return s.bucket.WriteAll(ctx, s.key(key), data, &blob.WriterOptions{
		ContentType: snapshotContentType,
	})
}

func (s *BlobStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, s.key(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, errors.Wrapf(os.ErrNotExist, "blob %q", key)
	}
	return data, err
}

func (s *BlobStorage) List(ctx context.Context, prefix string) ([]string, error) {
	iter := s.bucket.List(&blob.ListOptions{
		Prefix:    s.key(prefix),
		Delimiter: "/",
	})
	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, s.prefix))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (s *BlobStorage) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, s.key(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *BlobStorage) Close() error {
	return s.bucket.Close()
}
