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

// DataCubeTools covers data-cube metadata and the Pivot query dialect.
type DataCubeTools struct {
	session
}

func NewDataCubeTools(cfg *config.Config, opts ...polaris.Option) *DataCubeTools {
	return &DataCubeTools{session{cfg: cfg, opts: opts}}
}

func (d *DataCubeTools) Tools() []Tool {
	return []Tool{
		{
			Name:        "list_data_cubes",
			Description: "List all data cubes in the Polaris project with their metadata.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
		},
		{
			Name:        "get_data_cube",
			Description: "Get detailed information about a specific data cube including dimensions and measures.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"cube_id": stringProp("ID of the data cube (from list_data_cubes)"),
			}, "cube_id"),
		},
		{
			Name: "query_data_cube",
			Description: "Execute SQL query against a data cube (Pivot). Use 'source' from list_data_cubes. " +
				`Syntax: FROM "datacube"."SOURCE", "DIM:dimension_name", MEASURE_BY_ID('measure_id')`,
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"query_string":       stringProp("SQL query with data cube syntax"),
				"exact_results_only": boolProp("Use exact results for TopN/COUNT DISTINCT (default: false)", false),
			}, "query_string"),
		},
	}
}

func (d *DataCubeTools) Handle(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "list_data_cubes":
		client, err := d.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.ListDataCubes(ctx)
		if err != nil {
			return "", err
		}
		cubes := listValues(result)
		if len(cubes) == 0 {
			return "No data cubes found in the project.", nil
		}
		blocks := make([]string, len(cubes))
		for i, cube := range cubes {
			blocks[i] = fmt.Sprintf("- ID: %s\n  Title: %s\n  Source: %s",
				stringField(cube, "id", "unknown"),
				stringField(cube, "title", "No title"),
				stringField(cube, "source", "unknown"))
		}
		return fmt.Sprintf("Data cubes in project (%d total):\n\n%s", len(cubes), strings.Join(blocks, "\n")), nil

	case "get_data_cube":
		cubeID, err := stringArg(args, "cube_id")
		if err != nil {
			return "", err
		}
		client, err := d.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.GetDataCube(ctx, cubeID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Data cube details for '%s':\n\n%s", cubeID, formatJSON(result)), nil

	case "query_data_cube":
		queryString, err := stringArg(args, "query_string")
		if err != nil {
			return "", err
		}
		client, err := d.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.QueryDataCube(ctx, queryString, boolArg(args, "exact_results_only", false))
		if err != nil {
			return "", err
		}
		return formatDataCubeResult(result), nil

	default:
		return "", errmodel.System("unrouted_tool", "data cube registry cannot handle "+name, nil)
	}
}
