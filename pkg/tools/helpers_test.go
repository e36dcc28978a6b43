package tools

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/polaris"
)

func testCfg() *config.Config {
	cfg := config.Default()
	cfg.Organization = "acme"
	cfg.ProjectID = "proj-1"
	cfg.APIKey = "key123"
	return &cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDispatcher wires a dispatcher against a fake upstream.
func newTestDispatcher(t *testing.T, upstream http.HandlerFunc) *Dispatcher {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	d, err := NewDispatcher(testCfg(), discardLogger(), polaris.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// jsonUpstream replies with the same JSON body to every request.
func jsonUpstream(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
