package repo

import (
	"context"
)

// Storage persists navigation snapshots. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Write stores data under key, replacing what was there.
	Write(ctx context.Context, key string, data []byte) error
	// Read returns the data of key or an error wrapping os.ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns the keys starting with prefix, newest (alphabetically last) first.
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes key, deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
