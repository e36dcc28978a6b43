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

// DashboardTools covers read-only dashboard metadata.
type DashboardTools struct {
	session
}

func NewDashboardTools(cfg *config.Config, opts ...polaris.Option) *DashboardTools {
	return &DashboardTools{session{cfg: cfg, opts: opts}}
}

func (d *DashboardTools) Tools() []Tool {
	return []Tool{
		{
			Name:        "list_dashboards",
			Description: "List all dashboards in the Polaris project with their metadata.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{}),
		},
		{
			Name:        "get_dashboard",
			Description: "Get detailed information about a specific dashboard including its configuration.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"dashboard_id": stringProp("ID of the dashboard"),
			}, "dashboard_id"),
		},
	}
}

func (d *DashboardTools) Handle(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "list_dashboards":
		client, err := d.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.ListDashboards(ctx)
		if err != nil {
			return "", err
		}
		dashboards := listValues(result)
		if len(dashboards) == 0 {
			return "No dashboards found in the project.", nil
		}
		lines := make([]string, len(dashboards))
		for i, dash := range dashboards {
			lines[i] = fmt.Sprintf("- %s (ID: %s)",
				stringField(dash, "title", "Untitled"),
				stringField(dash, "id", "unknown"))
		}
		return fmt.Sprintf("Dashboards in project (%d total):\n\n%s", len(dashboards), strings.Join(lines, "\n")), nil

	case "get_dashboard":
		dashboardID, err := stringArg(args, "dashboard_id")
		if err != nil {
			return "", err
		}
		client, err := d.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		result, err := client.GetDashboard(ctx, dashboardID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Dashboard details for '%s':\n\n%s", dashboardID, formatJSON(result)), nil

	default:
		return "", errmodel.System("unrouted_tool", "dashboard registry cannot handle "+name, nil)
	}
}
