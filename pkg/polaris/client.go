// Package polaris is the outbound gateway to the Imply Polaris management
// API. A Client is opened per logical session of calls and must be closed
// when done; it owns the base address, the Authorization header, a fixed
// request timeout, and the redirect policy.
package polaris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
)

// requestTimeout bounds every outbound call. There are no retries; a
// timed-out call is reported once.
const requestTimeout = 60 * time.Second

// Client issues requests against one Polaris project.
type Client struct {
	http      *http.Client
	baseURL   string
	projectID string
	authz     string
	closed    bool
}

// Option adjusts a Client at Open time.
type Option func(*Client)

// WithBaseURL overrides the derived API host. Used by tests to point the
// client at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient substitutes the underlying HTTP client wholesale.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// Open acquires a client session. The returned Client must not be used
// after Close.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errmodel.System(errmodel.CodeNotInitialized, "nil configuration", nil)
	}
	c := &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   requestTimeout,
			// Redirects are never followed: a redirect to another
			// host would resend the Authorization header there.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:   cfg.BaseURL(),
		projectID: cfg.ProjectID,
		authz:     cfg.AuthHeader(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the session. Further calls on the client fail.
func (c *Client) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	c.http.CloseIdleConnections()
}

func (c *Client) ready() error {
	if c == nil || c.http == nil {
		return errmodel.System(errmodel.CodeNotInitialized, "client is not open", nil)
	}
	if c.closed {
		return errmodel.System(errmodel.CodeNotInitialized, "client used after Close", nil)
	}
	return nil
}

func (c *Client) v1(parts ...string) string {
	return "/v1/projects/" + c.projectID + "/" + strings.Join(parts, "/")
}

// do sends one request and decodes the JSON response. Non-2xx statuses
// become upstream errors carrying the status code and raw body. A 2xx
// response with an empty body yields a nil map.
func (c *Client) do(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errmodel.System("encode_failed", "failed to encode request body", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errmodel.System("bad_request", "failed to build request", err)
	}
	req.Header.Set("Authorization", c.authz)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errmodel.System("request_failed", fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errmodel.System("read_failed", "failed to read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errmodel.Upstream(resp.StatusCode, string(data))
	}
	if len(data) == 0 {
		return nil, nil
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errmodel.System("decode_failed", "failed to decode response body", err)
	}
	return out, nil
}

// ExecuteQuery runs a SQL query. Async queries go to the statements
// endpoint and return a query id instead of rows. timeoutMS of zero omits
// the timeout from the request.
func (c *Client) ExecuteQuery(ctx context.Context, sql string, async bool, timeoutMS int) (map[string]any, error) {
	endpoint := "query/sql"
	if async {
		endpoint = "query/sql/statements"
	}
	payload := map[string]any{"query": sql}
	if timeoutMS > 0 {
		payload["timeout"] = timeoutMS
	}
	return c.do(ctx, http.MethodPost, c.v1(endpoint), payload)
}

// GetQueryResults fetches the results of an async query.
func (c *Client) GetQueryResults(ctx context.Context, queryID string) (map[string]any, error) {
	id, err := ValidatePathParam(queryID, "query_id")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, c.v1("query", "sql", "statements", id, "results"), nil)
}

// GetQueryStatus fetches the status of an async query.
func (c *Client) GetQueryStatus(ctx context.Context, queryID string) (map[string]any, error) {
	id, err := ValidatePathParam(queryID, "query_id")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, c.v1("query", "sql", "statements", id), nil)
}

// CancelQuery asks the service to cancel a running async query. The
// upstream returns an empty body on success; a confirmation object is
// synthesized in that case.
func (c *Client) CancelQuery(ctx context.Context, queryID string) (map[string]any, error) {
	id, err := ValidatePathParam(queryID, "query_id")
	if err != nil {
		return nil, err
	}
	out, err := c.do(ctx, http.MethodDelete, c.v1("query", "sql", "statements", id), nil)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{"status": "cancelled"}
	}
	return out, nil
}

// ListTables lists all tables in the project.
func (c *Client) ListTables(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, c.v1("tables"), nil)
}

// GetTable fetches one table, including its schema.
func (c *Client) GetTable(ctx context.Context, tableName string) (map[string]any, error) {
	name, err := ValidatePathParam(tableName, "table_name")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, c.v1("tables", name), nil)
}

// ListDashboards lists all dashboards in the project.
func (c *Client) ListDashboards(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, c.v1("dashboards"), nil)
}

// GetDashboard fetches one dashboard's full configuration.
func (c *Client) GetDashboard(ctx context.Context, dashboardID string) (map[string]any, error) {
	id, err := ValidatePathParam(dashboardID, "dashboard_id")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, c.v1("dashboards", id), nil)
}

// ListDataCubes lists all data cubes in the project.
func (c *Client) ListDataCubes(ctx context.Context) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, c.v1("data-cubes"), nil)
}

// GetDataCube fetches one data cube, including dimensions and measures.
func (c *Client) GetDataCube(ctx context.Context, cubeID string) (map[string]any, error) {
	id, err := ValidatePathParam(cubeID, "cube_id")
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, c.v1("data-cubes", id), nil)
}

// QueryDataCube runs a Pivot SQL query through the older v0 endpoint. The
// query string travels in the body, so no path validation applies.
func (c *Client) QueryDataCube(ctx context.Context, queryString string, exactResultsOnly bool) (map[string]any, error) {
	payload := map[string]any{
		"queryString":      queryString,
		"exactResultsOnly": exactResultsOnly,
	}
	path := "/v0/projects/" + c.projectID + "/pivot/data-cube-sql/query"
	return c.do(ctx, http.MethodPost, path, payload)
}
