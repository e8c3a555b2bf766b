package lint

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Pages opens generated documentation pages by their relative name,
// e.g. "intro-01.html". Missing pages are reported with an error wrapping
// os.ErrNotExist.
type Pages interface {
	Open(ctx context.Context, page string) (io.ReadCloser, error)
}

// DirPages pages below a local directory
type DirPages string

func (d DirPages) Open(_ context.Context, page string) (io.ReadCloser, error) {
	clean := filepath.Clean(filepath.FromSlash(page))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, errors.Wrapf(os.ErrNotExist, "page %q is outside of %q", page, string(d))
	}
	return os.Open(filepath.Join(string(d), clean))
}

// BucketPages pages in a blob bucket below prefix
type BucketPages struct {
	Bucket *blob.Bucket
	Prefix string
}

func (b *BucketPages) Open(ctx context.Context, page string) (io.ReadCloser, error) {
	key := strings.TrimSuffix(b.Prefix, "/")
	if key != "" {
		key += "/"
	}
	r, err := b.Bucket.NewReader(ctx, key+page, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, errors.Wrapf(os.ErrNotExist, "page %q", page)
	}
	return r, err
}
