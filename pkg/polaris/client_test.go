package polaris

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Organization = "acme"
	cfg.ProjectID = "proj-1"
	cfg.APIKey = "key123"
	return &cfg
}

// recordingServer captures the last request and replies with the given
// status and body.
func recordingServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request, *[]byte) {
	t.Helper()
	var last http.Request
	var lastBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r
		lastBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &last, &lastBody
}

func openTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := Open(testConfig(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestExecuteQuerySync(t *testing.T) {
	srv, last, lastBody := recordingServer(t, 200, `{"rows": 1}`)
	c := openTestClient(t, srv)

	out, err := c.ExecuteQuery(context.Background(), "SELECT 1", false, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if out["rows"] != float64(1) {
		t.Fatalf("out=%v", out)
	}
	if last.Method != http.MethodPost || last.URL.Path != "/v1/projects/proj-1/query/sql" {
		t.Fatalf("%s %s", last.Method, last.URL.Path)
	}
	if got := last.Header.Get("Authorization"); got != "Basic key123" {
		t.Fatalf("auth=%q", got)
	}
	if got := last.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("content-type=%q", got)
	}

	var payload map[string]any
	if err := json.Unmarshal(*lastBody, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["query"] != "SELECT 1" || payload["timeout"] != float64(5000) {
		t.Fatalf("payload=%v", payload)
	}
}

func TestExecuteQueryAsyncEndpoint(t *testing.T) {
	srv, last, _ := recordingServer(t, 200, `{"queryId": "q1"}`)
	c := openTestClient(t, srv)

	if _, err := c.ExecuteQuery(context.Background(), "SELECT 1", true, 0); err != nil {
		t.Fatal(err)
	}
	if last.URL.Path != "/v1/projects/proj-1/query/sql/statements" {
		t.Fatalf("path=%s", last.URL.Path)
	}
}

func TestQueryIDPaths(t *testing.T) {
	srv, last, _ := recordingServer(t, 200, `{}`)
	c := openTestClient(t, srv)
	ctx := context.Background()

	if _, err := c.GetQueryResults(ctx, "q-1"); err != nil {
		t.Fatal(err)
	}
	if last.URL.Path != "/v1/projects/proj-1/query/sql/statements/q-1/results" {
		t.Fatalf("path=%s", last.URL.Path)
	}

	if _, err := c.GetQueryStatus(ctx, "q-1"); err != nil {
		t.Fatal(err)
	}
	if last.URL.Path != "/v1/projects/proj-1/query/sql/statements/q-1" {
		t.Fatalf("path=%s", last.URL.Path)
	}
}

func TestQueryIDValidatedBeforeRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	c := openTestClient(t, srv)

	_, err := c.GetQueryStatus(context.Background(), "../../admin")
	ce := errmodel.From(err)
	if ce == nil || ce.Code != errmodel.CodeInvalidCharacters {
		t.Fatalf("unexpected: %v", err)
	}
	if called {
		t.Fatal("request must not be sent for an unsafe query id")
	}
}

func TestCancelQuerySynthesizesBody(t *testing.T) {
	srv, last, _ := recordingServer(t, 202, "")
	c := openTestClient(t, srv)

	out, err := c.CancelQuery(context.Background(), "q-1")
	if err != nil {
		t.Fatal(err)
	}
	if last.Method != http.MethodDelete {
		t.Fatalf("method=%s", last.Method)
	}
	if out["status"] != "cancelled" {
		t.Fatalf("out=%v", out)
	}
}

func TestMetadataPaths(t *testing.T) {
	srv, last, _ := recordingServer(t, 200, `{"values": []}`)
	c := openTestClient(t, srv)
	ctx := context.Background()

	calls := []struct {
		call func() (map[string]any, error)
		path string
	}{
		{func() (map[string]any, error) { return c.ListTables(ctx) }, "/v1/projects/proj-1/tables"},
		{func() (map[string]any, error) { return c.GetTable(ctx, "wiki") }, "/v1/projects/proj-1/tables/wiki"},
		{func() (map[string]any, error) { return c.ListDashboards(ctx) }, "/v1/projects/proj-1/dashboards"},
		{func() (map[string]any, error) { return c.GetDashboard(ctx, "d1") }, "/v1/projects/proj-1/dashboards/d1"},
		{func() (map[string]any, error) { return c.ListDataCubes(ctx) }, "/v1/projects/proj-1/data-cubes"},
		{func() (map[string]any, error) { return c.GetDataCube(ctx, "c1") }, "/v1/projects/proj-1/data-cubes/c1"},
	}
	for _, tc := range calls {
		if _, err := tc.call(); err != nil {
			t.Fatalf("%s: %v", tc.path, err)
		}
		if last.URL.Path != tc.path {
			t.Fatalf("path=%s want %s", last.URL.Path, tc.path)
		}
	}
}

func TestQueryDataCubeUsesV0(t *testing.T) {
	srv, last, lastBody := recordingServer(t, 200, `{"data": []}`)
	c := openTestClient(t, srv)

	if _, err := c.QueryDataCube(context.Background(), `SELECT 1`, true); err != nil {
		t.Fatal(err)
	}
	if last.URL.Path != "/v0/projects/proj-1/pivot/data-cube-sql/query" {
		t.Fatalf("path=%s", last.URL.Path)
	}
	var payload map[string]any
	if err := json.Unmarshal(*lastBody, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["queryString"] != "SELECT 1" || payload["exactResultsOnly"] != true {
		t.Fatalf("payload=%v", payload)
	}
}

func TestNon2xxBecomesUpstreamError(t *testing.T) {
	srv, _, _ := recordingServer(t, 404, `{"error": "no such table"}`)
	c := openTestClient(t, srv)

	_, err := c.GetTable(context.Background(), "missing")
	ce := errmodel.From(err)
	if ce == nil || ce.Category != errmodel.CategoryUpstream {
		t.Fatalf("unexpected: %v", err)
	}
	if ce.Status != 404 {
		t.Fatalf("status=%d", ce.Status)
	}
	if ce.Body() != `{"error": "no such table"}` {
		t.Fatalf("body=%q", ce.Body())
	}
}

func TestRedirectNotFollowed(t *testing.T) {
	followed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			followed = true
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()
	c := openTestClient(t, srv)

	_, err := c.ListTables(context.Background())
	ce := errmodel.From(err)
	if ce == nil || ce.Status != http.StatusFound {
		t.Fatalf("expected the 302 itself, got %v", err)
	}
	if followed {
		t.Fatal("redirect was followed")
	}
}

func TestUseAfterClose(t *testing.T) {
	srv, _, _ := recordingServer(t, 200, `{}`)
	c, err := Open(testConfig(), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	_, err = c.ListTables(context.Background())
	ce := errmodel.From(err)
	if ce == nil || ce.Code != errmodel.CodeNotInitialized {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestZeroClientNotInitialized(t *testing.T) {
	var c Client
	_, err := c.ListTables(context.Background())
	ce := errmodel.From(err)
	if ce == nil || ce.Code != errmodel.CodeNotInitialized {
		t.Fatalf("unexpected: %v", err)
	}
}
