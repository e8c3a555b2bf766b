package repo

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	HistorySnapshotPrefix = "navserver-snapshot-"
	HistorySnapshotSuffix = ".json"
	CurrentKey            = HistorySnapshotPrefix + "current" + HistorySnapshotSuffix

	// sortable and free of path separators
	historyTimeLayout = "20060102T150405.000000000Z"
)

// DefaultHistoryDir per user data dir, e.g. ~/.local/share/navserver
var DefaultHistoryDir = filepath.Join(xdg.DataHome, "navserver")

type (
	// History keeps the current snapshot plus a limited number of backups
	History struct {
		l            *zap.Logger
		storage      Storage
		historyDir   string
		historyLimit int
		now          func() time.Time
		mu           sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func HistoryWithHistoryLimit(v int) HistoryOption {
	return func(o *History) {
		o.historyLimit = v
	}
}

// HistoryWithHistoryDir directory of the default filesystem storage
func HistoryWithHistoryDir(v string) HistoryOption {
	return func(o *History) {
		o.historyDir = v
	}
}

func HistoryWithStorage(v Storage) HistoryOption {
	return func(o *History) {
		o.storage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, opts ...HistoryOption) (*History, error) {
	inst := &History{
		l:            l.Named("history"),
		historyDir:   DefaultHistoryDir,
		historyLimit: 2,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		storage, err := NewFilesystemStorage(inst.historyDir)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default history storage")
		}
		inst.storage = storage
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add stores a snapshot as backup and as current one, then drops old backups
func (h *History) Add(ctx context.Context, snapshot []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	backupKey := HistorySnapshotPrefix + h.now().UTC().Format(historyTimeLayout) + HistorySnapshotSuffix
	h.l.Debug("writing snapshot", zap.String("backup", backupKey), zap.Int("length", len(snapshot)))

	if err := h.storage.Write(ctx, backupKey, snapshot); err != nil {
		return errors.Wrap(err, "failed to write backup snapshot")
	}
	if err := h.storage.Write(ctx, CurrentKey, snapshot); err != nil {
		return errors.Wrap(err, "failed to write current snapshot")
	}
	if err := h.cleanup(ctx); err != nil {
		return errors.Wrap(err, "failed to clean up history")
	}
	return nil
}

// GetCurrent reads the current snapshot into buf
func (h *History) GetCurrent(ctx context.Context, buf *bytes.Buffer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, err := h.storage.Read(ctx, CurrentKey)
	if err != nil {
		return err
	}
	_, err = buf.Write(data)
	return err
}

// Backups keys of the kept backups, newest first
func (h *History) Backups(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.backups(ctx)
}

func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.storage != nil {
		return h.storage.Close()
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) backups(ctx context.Context) ([]string, error) {
	keys, err := h.storage.List(ctx, HistorySnapshotPrefix)
	if err != nil {
		return nil, err
	}
	var backups []string
	for _, key := range keys {
		if key != CurrentKey && strings.HasSuffix(key, HistorySnapshotSuffix) {
			backups = append(backups, key)
		}
	}
	return backups, nil
}

func (h *History) cleanup(ctx context.Context) error {
	outdated, err := h.outdated(ctx, h.historyLimit)
	if err != nil {
		return err
	}
	for _, key := range outdated {
		h.l.Debug("removing outdated backup", zap.String("key", key))
		if err := h.storage.Delete(ctx, key); err != nil {
			return errors.Wrapf(err, "could not remove backup %s", key)
		}
	}
	return nil
}

func (h *History) outdated(ctx context.Context, limit int) ([]string, error) {
	backups, err := h.backups(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not list backups")
	}
	if len(backups) <= limit {
		return nil, nil
	}
	return backups[limit:], nil
}
