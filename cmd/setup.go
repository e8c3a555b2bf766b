package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/lint"
	"github.com/foomo/navserver/pkg/navtree"
	"github.com/foomo/navserver/pkg/repo"
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gocloud.dev/blob"
)

// supportedBlobSchemes lists the URL schemes supported by blob storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://"}

// newRepo wires storage, history and repo from the flags
func newRepo(ctx context.Context, v *viper.Viper, l *zap.Logger, url string) (*repo.Repo, *repo.History, error) {
	storage, err := createStorage(ctx, v, l)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage: %w", err)
	}

	history, err := repo.NewHistory(l.Named("inst.history"),
		repo.HistoryWithStorage(storage),
		repo.HistoryWithHistoryDir(historyDirFlag(v)),
		repo.HistoryWithHistoryLimit(historyLimitFlag(v)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create history: %w", err)
	}

	format, err := sourceFormat(v)
	if err != nil {
		return nil, nil, err
	}

	r := repo.New(l.Named("inst.repo"),
		url,
		history,
		repo.WithHTTPClient(
			keelhttp.NewHTTPClient(
				keelhttp.HTTPClientWithTimeout(repositoryTimeoutFlag(v)),
				keelhttp.HTTPClientWithTelemetry(),
			),
		),
		repo.WithFormat(format),
		repo.WithValidateOptions(validateOptions(v)...),
		repo.WithPollInterval(pollIntervalFlag(v)),
		repo.WithPoll(pollFlag(v)),
	)
	return r, history, nil
}

func validateOptions(v *viper.Viper) []nav.ValidateOption {
	return []nav.ValidateOption{
		nav.WithMaxDepth(maxDepthFlag(v)),
		nav.WithUniqueTargets(uniqueTargetsFlag(v)),
	}
}

func sourceFormat(v *viper.Viper) (navtree.Format, error) {
	format := navtree.Format(sourceFormatFlag(v))
	if format == "" {
		return "", nil
	}
	for _, f := range navtree.Formats() {
		if f == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown source format %q (supported: %v)", format, navtree.Formats())
}

// newLinter checks against the pages flag, a bucket url or a directory
func newLinter(ctx context.Context, v *viper.Viper, l *zap.Logger) (*lint.Linter, func() error, error) {
	opts := []lint.Option{
		lint.WithValidateOptions(nav.WithMaxDepth(maxDepthFlag(v))),
	}
	closer := func() error { return nil }
	switch pages := pagesFlag(v); {
	case pages == "":
	case isValidBlobScheme(pages):
		bucket, err := blob.OpenBucket(ctx, pages)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open pages bucket %q: %w", pages, err)
		}
		opts = append(opts, lint.WithPages(&lint.BucketPages{Bucket: bucket}))
		closer = bucket.Close
	default:
		opts = append(opts, lint.WithPages(lint.DirPages(pages)))
	}
	return lint.New(l, opts...), closer, nil
}

// createStorage creates a storage backend based on the configuration
func createStorage(ctx context.Context, v *viper.Viper, l *zap.Logger) (repo.Storage, error) {
	storageType := storageTypeFlag(v)
	blobBucket := storageBlobBucketFlag(v)
	blobPrefix := storageBlobPrefixFlag(v)

	// Warn about ignored blob config
	if storageType != "blob" && (blobBucket != "" || blobPrefix != "") {
		l.Warn("blob storage flags are set but storage-type is not 'blob'; blob config will be ignored",
			zap.String("storage-type", storageType),
			zap.String("blob-bucket", blobBucket),
			zap.String("blob-prefix", blobPrefix),
		)
	}

	l.Info("creating storage", zap.String("type", storageType))

	switch storageType {
	case "blob":
		if blobBucket == "" {
			return nil, fmt.Errorf("blob bucket URL is required when storage-type is 'blob' (supported schemes: %s)", strings.Join(supportedBlobSchemes, ", "))
		}
		if !isValidBlobScheme(blobBucket) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: %s", blobBucket, strings.Join(supportedBlobSchemes, ", "))
		}
		l.Info("using blob storage",
			zap.String("bucket", blobBucket),
			zap.String("prefix", blobPrefix),
			zap.String("provider", detectBlobProvider(blobBucket)),
		)
		return repo.NewBlobStorage(ctx, blobBucket, blobPrefix)
	case "filesystem", "":
		dir := historyDirFlag(v)
		l.Info("using filesystem storage", zap.String("dir", dir))
		return repo.NewFilesystemStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: filesystem, blob)", storageType)
	}
}

// isValidBlobScheme checks if the bucket URL has a supported scheme
func isValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

// detectBlobProvider returns a human-readable provider name from the URL scheme
func detectBlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	default:
		return "unknown"
	}
}
