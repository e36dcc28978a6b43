package tools

import (
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
)

// stringArg extracts a required string argument. Absent, empty, or
// non-string values all read as missing; the message is shown to the
// caller verbatim.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", errmodel.Validation(errmodel.CodeMissingArgument, name+" is required", nil)
	}
	return v, nil
}

// intArg extracts an optional integer argument. JSON numbers arrive as
// float64.
func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// boolArg extracts an optional boolean argument.
func boolArg(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}
