// Package mcpserver binds the tool dispatcher onto the official MCP Go
// SDK and serves it over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wilhg/polaris-mcp/pkg/tools"
)

// Server wraps an mcp.Server with every Polaris tool registered.
type Server struct {
	srv *mcp.Server
}

// New registers the dispatcher's tools on a fresh MCP server. Tools are
// added through the raw handler path: the SDK does not validate arguments,
// so the registries own every argument error and its message.
func New(name, version string, d *tools.Dispatcher) *Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	handler := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return textResult("Error: tool arguments must be a JSON object", true), nil
			}
		}
		text := d.Dispatch(ctx, req.Params.Name, args)
		return textResult(text, strings.HasPrefix(text, "Error: ")), nil
	}
	for _, tl := range d.Tools() {
		srv.AddTool(&mcp.Tool{
			Name:        tl.Name,
			Description: tl.Description,
			InputSchema: tl.InputSchema,
		}, handler)
	}
	return &Server{srv: srv}
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}

// Run serves the MCP protocol on stdin/stdout until ctx is cancelled or
// the peer disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport. Tests use this
// with in-memory transports.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.srv.Connect(ctx, t, nil)
}
