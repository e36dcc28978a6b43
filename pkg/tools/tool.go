// Package tools declares the callable surface of the Polaris MCP server:
// four registries (query, table, dashboard, data cube) and the dispatcher
// that routes tool invocations to them.
package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/polaris"
)

// Tool declares one callable operation: a unique name, a human
// description, and a JSON schema for its arguments.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Handler is one registry's callable surface. Tools returns the immutable
// descriptors; Handle runs one invocation and returns the display text or
// an error for the dispatcher to translate.
type Handler interface {
	Tools() []Tool
	Handle(ctx context.Context, name string, args map[string]any) (string, error)
}

// session is the piece shared by all registries: the configuration and the
// gateway options (tests inject a local base URL here). Each invocation
// opens its own client and releases it before returning.
type session struct {
	cfg  *config.Config
	opts []polaris.Option
}

func (s session) open() (*polaris.Client, error) {
	return polaris.Open(s.cfg, s.opts...)
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func stringProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func intProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func boolProp(desc string, def bool) *jsonschema.Schema {
	raw, _ := json.Marshal(def)
	return &jsonschema.Schema{Type: "boolean", Description: desc, Default: raw}
}
