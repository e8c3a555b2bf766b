package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/foomo/navserver/pkg/repo"
	"github.com/foomo/navserver/pkg/repo/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRepo(t *testing.T, path string) *repo.Repo {
	t.Helper()
	l := zaptest.NewLogger(t)
	server, varDir := mock.GetMockData(t)
	h, err := repo.NewHistory(l, repo.HistoryWithHistoryDir(varDir))
	require.NoError(t, err)
	r := repo.New(l, server.URL+path, h)
	go r.Start(t.Context()) //nolint:errcheck
	require.Eventually(t, r.Loaded, 5*time.Second, 20*time.Millisecond)
	// wait for the initial update to let go of the update routine
	require.Eventually(t, func() bool {
		return !strings.Contains(r.Update(t.Context()).ErrorMessage, repo.ErrUpdateRejected.Error())
	}, 5*time.Second, 20*time.Millisecond)
	return r
}
