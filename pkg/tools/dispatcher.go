package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
	"github.com/wilhg/polaris-mcp/pkg/polaris"
)

// Dispatcher routes tool invocations to the owning registry and turns
// every failure into user-safe display text. Errors never escape a
// dispatch.
type Dispatcher struct {
	log      *slog.Logger
	handlers map[string]Handler
	tools    []Tool
	tracer   trace.Tracer
}

// NewDispatcher builds the dispatch table from all four registries. Two
// registries declaring the same tool name, or a registry advertising an
// invalid schema, is a construction error.
func NewDispatcher(cfg *config.Config, log *slog.Logger, opts ...polaris.Option) (*Dispatcher, error) {
	d := &Dispatcher{
		log:      log,
		handlers: make(map[string]Handler),
		tracer:   otel.Tracer("polaris-mcp/tools"),
	}
	registries := []Handler{
		NewQueryTools(cfg, opts...),
		NewTableTools(cfg, opts...),
		NewDashboardTools(cfg, opts...),
		NewDataCubeTools(cfg, opts...),
	}
	for _, reg := range registries {
		for _, tl := range reg.Tools() {
			if _, dup := d.handlers[tl.Name]; dup {
				return nil, fmt.Errorf("duplicate tool name %q", tl.Name)
			}
			if err := compileSchema(tl.InputSchema); err != nil {
				return nil, fmt.Errorf("tool %q: invalid input schema: %w", tl.Name, err)
			}
			d.handlers[tl.Name] = reg
			d.tools = append(d.tools, tl)
		}
	}
	return d, nil
}

// Tools returns every advertised descriptor, in registration order.
func (d *Dispatcher) Tools() []Tool {
	return d.tools
}

// Dispatch runs one tool invocation and returns the display text. Unknown
// names get a stable error text rather than a failed call.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) string {
	handler, ok := d.handlers[name]
	if !ok {
		d.log.Error("unknown tool requested", "tool", name)
		return fmt.Sprintf("Error: Unknown tool '%s'", name)
	}

	invocationID := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "tool."+name, trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("invocation.id", invocationID),
	))
	defer span.End()

	d.log.Info("calling tool", "tool", name, "invocation_id", invocationID)
	start := time.Now()
	text, err := handler.Handle(ctx, name, args)
	if err != nil {
		span.RecordError(err)
		return d.errorText(name, invocationID, err)
	}
	d.log.Info("tool call completed", "tool", name, "invocation_id", invocationID, "duration", time.Since(start))
	return text
}

// errorText is the single place upstream and internal failures become
// caller-visible text. Validation messages pass through; upstream errors
// map by status code; everything else is logged in full and replaced by a
// generic message so no internal detail leaks.
func (d *Dispatcher) errorText(tool, invocationID string, err error) string {
	ce := errmodel.From(err)
	switch ce.Category {
	case errmodel.CategoryValidation:
		return "Error: " + ce.Message
	case errmodel.CategoryUpstream:
		d.log.Warn("upstream error", "tool", tool, "invocation_id", invocationID, "status", ce.Status)
		return "Error: " + upstreamMessage(ce)
	default:
		d.log.Error("tool call failed", "tool", tool, "invocation_id", invocationID, "error", err)
		return "Error: An unexpected error occurred while processing the request."
	}
}

// upstreamMessage maps every possible status code to a user-facing
// message. The raw body is exposed only in the default branch; 401, 403,
// 429 and 5xx bodies may carry internal detail and are replaced wholesale.
func upstreamMessage(e *errmodel.Error) string {
	switch {
	case e.Status == 401:
		return "Authentication failed. Please check your API key or access token."
	case e.Status == 403:
		return "Permission denied. You don't have access to this resource."
	case e.Status == 404:
		return "Resource not found."
	case e.Status == 429:
		return "Rate limit exceeded. Please try again later."
	case e.Status >= 500:
		return fmt.Sprintf("Server error (%d). Please try again later.", e.Status)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body())
	}
}

// compileSchema checks that an advertised schema is valid draft 2020-12.
func compileSchema(s *jsonschema.Schema) error {
	if s == nil {
		return fmt.Errorf("schema is missing")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	c := santhosh.NewCompiler()
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return err
	}
	_, err = c.Compile("mem://schema.json")
	return err
}
