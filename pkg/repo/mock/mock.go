package mock

import (
	"net/http"
	"net/http/httptest"
	"path"
	"runtime"
	"testing"
	"time"

	"github.com/foomo/navserver/requests"
)

// Dir directory holding the mock sources
func Dir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Dir(filename)
}

// GetMockData serves the mock sources and returns a history dir
func GetMockData(tb testing.TB) (*httptest.Server, string) {
	tb.Helper()
	mockDir := Dir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(time.Millisecond * 10)
		http.ServeFile(w, req, path.Join(mockDir, path.Clean(req.URL.Path)))
	}))
	tb.Cleanup(server.Close)

	return server, tb.TempDir()
}

// MakeNodeRequest a request for a nested tutorials node
func MakeNodeRequest() *requests.Node {
	return &requests.Node{
		Tree:   "tutorials",
		Target: "multiarch.html#autotoc_md185",
		Expand: true,
	}
}

// MakeSearchRequest a request matching every conclusion
func MakeSearchRequest() *requests.Search {
	return &requests.Search{
		Tree:  "tutorials",
		Query: "Conclusion",
	}
}
