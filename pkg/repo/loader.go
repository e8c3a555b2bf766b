package repo

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/metrics"
	"github.com/foomo/navserver/pkg/navtree"
	"github.com/foomo/navserver/pkg/utils"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	json              = jsoniter.ConfigCompatibleWithStandardLibrary
	ErrUpdateRejected = errors.New("update rejected: update in progress")
)

type updateResponse struct {
	repoRuntime int64
	err         error
}

func (r *Repo) PollRoutine(ctx context.Context) error {
	l := r.l.Named("routine.poll")
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
			resChan := make(chan updateResponse)
			select {
			case r.updateInProgressChannel <- resChan:
			case <-ctx.Done():
				return nil
			}
			if response := <-resChan; response.err != nil {
				l.Error("update failed", zap.Error(response.err))
			}
		}
	}
}

func (r *Repo) UpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.update")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case resChan := <-r.updateInProgressChannel:
			start := time.Now()
			l := l.With(zap.String("run_id", uuid.New().String()))

			l.Info("update started")

			repoRuntime, err := r.update(context.WithoutCancel(ctx))
			if err != nil {
				l.Error("update failed", zap.Error(err))
				metrics.UpdatesFailedCounter.WithLabelValues().Inc()
			} else {
				r.markLoaded(l)
				l.Info("update success")
				metrics.UpdatesCompletedCounter.WithLabelValues().Inc()
			}

			resChan <- updateResponse{
				repoRuntime: repoRuntime,
				err:         err,
			}

			metrics.UpdateDuration.WithLabelValues().Observe(time.Since(start).Seconds())
		}
	}
}

// TreesUpdateRoutine is the only writer of the directory
func (r *Repo) TreesUpdateRoutine(ctx context.Context) error {
	l := r.l.Named("routine.treesUpdate")
	for {
		select {
		case <-ctx.Done():
			l.Debug("routine canceled", zap.Error(ctx.Err()))
			return nil
		case snapshot := <-r.treesUpdateChannel:
			l.Debug("received trees", zap.Int("count", len(snapshot)))
			err := r._updateTrees(snapshot)
			if err != nil {
				l.Debug("update failed", zap.Error(err))
			}
			r.treesUpdateDoneChannel <- err
		}
	}
}

func (r *Repo) updateTrees(ctx context.Context, snapshot Snapshot) error {
	select {
	case r.treesUpdateChannel <- snapshot:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-r.treesUpdateDoneChannel
}

// do not call directly, but only through channel
func (r *Repo) _updateTrees(snapshot Snapshot) error {
	if len(snapshot) == 0 {
		return errors.New("source does not contain any navigation tree")
	}
	var (
		err          error
		newDirectory = make(map[string]*Tree, len(snapshot))
		order        = make([]string, 0, len(snapshot))
	)
	for _, t := range snapshot {
		if t.Name == "" {
			err = multierr.Append(err, errors.New("tree without name"))
			continue
		}
		if _, ok := newDirectory[t.Name]; ok {
			err = multierr.Append(err, errors.Errorf("duplicate tree %q", t.Name))
			continue
		}
		if validationErr := nav.Validate(t, r.validateOptions...); validationErr != nil {
			err = multierr.Append(err, validationErr)
			continue
		}
		indexed, indexErr := newTree(t)
		if indexErr != nil {
			err = multierr.Append(err, errors.Wrapf(indexErr, "tree %q", t.Name))
			continue
		}
		newDirectory[t.Name] = indexed
		order = append(order, t.Name)
	}
	if err != nil {
		return errors.Wrap(err, "update trees failed")
	}

	// replace everything at once, trees missing in the snapshot are dropped
	for name := range r.Directory() {
		if _, ok := newDirectory[name]; !ok {
			r.l.Info("removing orphaned tree", zap.String("tree", name))
			metrics.TreeNodesGauge.DeleteLabelValues(name)
		}
	}
	for name, t := range newDirectory {
		metrics.TreeNodesGauge.WithLabelValues(name).Set(float64(t.Len()))
	}
	r.setDirectory(newDirectory, order)
	return nil
}

func (r *Repo) tryToRestoreCurrent(ctx context.Context) error {
	buf := &bytes.Buffer{}
	if err := r.history.GetCurrent(ctx, buf); err != nil {
		return err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snapshot); err != nil {
		return errors.Wrap(err, "failed to decode snapshot")
	}
	if err := r.updateTrees(ctx, snapshot); err != nil {
		return err
	}
	r.SetSnapshot(buf)
	r.markLoaded(r.l)
	return nil
}

// Load fetches and parses a source once without validating it. An empty
// format is detected from the url.
func Load(ctx context.Context, client *http.Client, url string, format navtree.Format) (Snapshot, error) {
	data, err := fetch(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return parse(url, format, data)
}

func (r *Repo) fetch(ctx context.Context) ([]byte, error) {
	return fetch(ctx, r.httpClient, r.url)
}

func (r *Repo) parse(data []byte) (Snapshot, error) {
	return parse(r.url, r.format, data)
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if !utils.IsValidURL(url) {
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read source file")
		}
		return data, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create source request")
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get source")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("bad response code from source %q want %d", resp.Status, http.StatusOK)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source")
	}
	return data, nil
}

func parse(url string, format navtree.Format, data []byte) (Snapshot, error) {
	if format == "" {
		detected, err := navtree.DetectFormat(url)
		if err != nil {
			return nil, err
		}
		format = detected
	}
	trees, err := navtree.Parse(format, navtree.TreeName(url), bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse source")
	}
	return trees, nil
}

func (r *Repo) update(ctx context.Context) (repoRuntime int64, err error) {
	start := time.Now()
	data, err := r.fetch(ctx)
	repoRuntime = time.Since(start).Nanoseconds()
	if err != nil {
		return repoRuntime, err
	}
	if r.poll && r.Loaded() && bytes.Equal(data, r.source) {
		r.l.Debug("source is up to date")
		return repoRuntime, nil
	}
	r.l.Debug("loading source", zap.String("url", r.url), zap.Int("length", len(data)))

	snapshot, err := r.parse(data)
	if err != nil {
		return repoRuntime, err
	}
	if err := r.updateTrees(ctx, snapshot); err != nil {
		return repoRuntime, err
	}
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return repoRuntime, errors.Wrap(err, "failed to encode snapshot")
	}
	r.SetSnapshot(bytes.NewBuffer(encoded))
	r.source = data

	if err := r.history.Add(ctx, encoded); err != nil {
		r.l.Error("could not persist snapshot in history", zap.Error(err))
		metrics.HistoryPersistFailedCounter.WithLabelValues().Inc()
	}
	return repoRuntime, nil
}

// limit resources and allow only one update request at once
func (r *Repo) tryUpdate(ctx context.Context) (repoRuntime int64, err error) {
	c := make(chan updateResponse)
	select {
	case r.updateInProgressChannel <- c:
		r.l.Debug("update request added to queue")
		ur := <-c
		return ur.repoRuntime, ur.err
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
		r.l.Info("update request rejected, another update is in progress")
		return 0, ErrUpdateRejected
	}
}
