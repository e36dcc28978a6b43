package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxDisplayRows caps how many data rows a data-cube query renders.
const maxDisplayRows = 100

// dataCubeHeaderRows is the number of leading metadata rows in a v0
// data-cube query response: row 0 is column names, rows 1-2 are type
// information. The endpoint is undocumented; this constant reflects
// observed behavior.
const dataCubeHeaderRows = 3

// formatJSON pretty-prints a payload for display.
func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// listValues pulls the item list out of a Polaris list response.
func listValues(result map[string]any) []map[string]any {
	raw, _ := result["values"].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if m, ok := it.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// stringField reads a string field with a fallback for absent or
// non-string values.
func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func joinAny(vals []any, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}

// formatDataCubeResult renders the 2-D result array of a v0 data-cube
// query as a readable table.
func formatDataCubeResult(result map[string]any) string {
	data, _ := result["data"].([]any)
	if len(data) <= dataCubeHeaderRows {
		return "Query returned no results."
	}

	columns, _ := data[0].([]any)
	rows := data[dataCubeHeaderRows:]

	var b strings.Builder
	fmt.Fprintf(&b, "Query Results (%d rows):\n\n", len(rows))
	b.WriteString("Columns: " + joinAny(columns, ", ") + "\n\n")

	shown := rows
	if len(rows) > maxDisplayRows {
		shown = rows[:maxDisplayRows]
	}
	for _, r := range shown {
		cells, _ := r.([]any)
		b.WriteString(joinAny(cells, " | ") + "\n")
	}
	if len(rows) > maxDisplayRows {
		fmt.Fprintf(&b, "\n... and %d more rows", len(rows)-maxDisplayRows)
	}
	return b.String()
}
