package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
	"github.com/wilhg/polaris-mcp/pkg/polaris"
)

// TableTools covers read-only table metadata.
type TableTools struct {
	session
}

func NewTableTools(cfg *config.Config, opts ...polaris.Option) *TableTools {
	return &TableTools{session{cfg: cfg, opts: opts}}
}

func (t *TableTools) Tools() []Tool {
	return []Tool{
		{
			Name:        "list_tables",
			Description: "List all tables in the Druid project with their metadata.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
		},
		{
			Name:        "get_table_schema",
			Description: "Get detailed schema information for a specific table.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"table_name": stringProp("Name of the table"),
			}, "table_name"),
		},
	}
}

func (t *TableTools) Handle(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "list_tables":
		client, err := t.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.ListTables(ctx)
		if err != nil {
			return "", err
		}
		tables := listValues(result)
		if len(tables) == 0 {
			return "No tables found in the project.", nil
		}
		lines := make([]string, len(tables))
		for i, table := range tables {
			lines[i] = fmt.Sprintf("- %s: %s (%s)",
				stringField(table, "name", "unknown"),
				stringField(table, "type", "unknown"),
				stringField(table, "availability", "unknown"))
		}
		return fmt.Sprintf("Tables in project (%d total):\n\n%s", len(tables), strings.Join(lines, "\n")), nil

	case "get_table_schema":
		tableName, err := stringArg(args, "table_name")
		if err != nil {
			return "", err
		}
		client, err := t.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.GetTable(ctx, tableName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Table schema for '%s':\n\n%s", tableName, formatJSON(result)), nil

	default:
		return "", errmodel.System("unrouted_tool", "table registry cannot handle "+name, nil)
	}
}
