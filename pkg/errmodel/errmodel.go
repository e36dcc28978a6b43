package errmodel

import (
	"encoding/json"
	"errors"
	"strings"
)

// Category values for compact errors.
const (
	// CategoryValidation covers locally rejected input: empty or unsafe
	// path parameters, missing tool arguments, over-length queries.
	CategoryValidation = "validation"
	// CategoryUpstream covers non-2xx responses from the Polaris API.
	CategoryUpstream = "upstream"
	// CategorySystem covers everything else; its details are never shown
	// to the caller.
	CategorySystem = "system"
)

// Codes used across the module.
const (
	CodeEmptyValue        = "empty_value"
	CodeInvalidCharacters = "invalid_characters"
	CodeMissingArgument   = "missing_argument"
	CodeQueryTooLong      = "query_too_long"
	CodeNotInitialized    = "not_initialized"
)

// Error is the compact error payload used internally. It implements the
// error interface.
type Error struct {
	Category string         `json:"category"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Status   int            `json:"status,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// New constructs a new compact error.
func New(category, code, message string, ctx map[string]any) *Error {
	ce := &Error{Category: category, Code: code, Message: truncate(message, 512)}
	if len(ctx) > 0 {
		ce.Context = truncateContext(ctx)
	}
	return ce
}

// From converts any error into a compact Error. If err is already *Error,
// it's returned as-is.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	// Default to system/internal for unknown error types.
	return &Error{Category: CategorySystem, Code: "internal", Message: truncate(err.Error(), 512)}
}

// Validation constructs a validation-category error. Its message is safe
// to show to the caller verbatim.
func Validation(code, message string, ctx map[string]any) *Error {
	return New(CategoryValidation, code, message, ctx)
}

// Upstream constructs an error for a non-2xx API response. The body is
// kept raw in Context["body"]; whether it reaches the caller is decided
// at the dispatch boundary, by status code.
func Upstream(status int, body string) *Error {
	e := New(CategoryUpstream, "http_error", "upstream request failed", nil)
	e.Status = status
	e.Context = map[string]any{"body": body}
	return e
}

// System constructs a system-category error wrapping an optional cause.
func System(code, message string, cause error) *Error {
	e := New(CategorySystem, code, message, nil)
	if cause != nil {
		e.Context = map[string]any{"cause": truncate(cause.Error(), 256)}
	}
	return e
}

// Body returns the raw upstream response body, if any.
func (e *Error) Body() string {
	if e == nil || e.Context == nil {
		return ""
	}
	s, _ := e.Context["body"].(string)
	return s
}

// IsCategory checks if err belongs to a specific category.
func IsCategory(err error, category string) bool {
	ce := From(err)
	return ce != nil && strings.EqualFold(ce.Category, category)
}

// truncate trims a string to max characters.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateContext trims long string values in the context map. The "body"
// key is exempt: upstream bodies are surfaced whole for non-sensitive
// status codes.
func truncateContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if k == "body" {
			out[k] = v
			continue
		}
		switch t := v.(type) {
		case string:
			out[k] = truncate(t, 256)
		default:
			b, err := json.Marshal(t)
			if err == nil && len(b) > 0 {
				out[k] = truncate(string(b), 256)
			} else {
				out[k] = t
			}
		}
	}
	return out
}
