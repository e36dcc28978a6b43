package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/errmodel"
	"github.com/wilhg/polaris-mcp/pkg/polaris"
)

// QueryTools covers SQL execution: synchronous, asynchronous, and the
// status/results/cancel operations on async queries.
type QueryTools struct {
	session
}

func NewQueryTools(cfg *config.Config, opts ...polaris.Option) *QueryTools {
	return &QueryTools{session{cfg: cfg, opts: opts}}
}

func sqlSchema() *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"sql":        stringProp("SQL query to execute"),
		"timeout_ms": intProp("Query timeout in milliseconds (optional)"),
	}, "sql")
}

func queryIDSchema(desc string) *jsonschema.Schema {
	return objectSchema(map[string]*jsonschema.Schema{
		"query_id": stringProp(desc),
	}, "query_id")
}

func (q *QueryTools) Tools() []Tool {
	return []Tool{
		{
			Name:        "execute_sql_query",
			Description: "Execute a SQL query against Druid and return results. Use this for synchronous queries on small datasets.",
			InputSchema: sqlSchema(),
		},
		{
			Name:        "execute_async_query",
			Description: "Execute an asynchronous SQL query for large datasets or long-running queries. Returns a query ID.",
			InputSchema: sqlSchema(),
		},
		{
			Name:        "get_query_results",
			Description: "Get results from an asynchronous query using its query ID.",
			InputSchema: queryIDSchema("Query ID from execute_async_query"),
		},
		{
			Name:        "get_query_status",
			Description: "Check the status of an asynchronous query.",
			InputSchema: queryIDSchema("Query ID to check"),
		},
		{
			Name:        "cancel_query",
			Description: "Cancel a running query.",
			InputSchema: queryIDSchema("Query ID to cancel"),
		},
	}
}

// validateSQL rejects over-length queries before anything leaves the
// process.
func (q *QueryTools) validateSQL(sql string) error {
	if len(sql) > q.cfg.MaxQueryLength {
		return errmodel.Validation(errmodel.CodeQueryTooLong,
			fmt.Sprintf("Query too long. Maximum length: %d", q.cfg.MaxQueryLength), nil)
	}
	return nil
}

func (q *QueryTools) Handle(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "execute_sql_query", "execute_async_query":
		sql, err := stringArg(args, "sql")
		if err != nil {
			return "", err
		}
		if err := q.validateSQL(sql); err != nil {
			return "", err
		}
		client, err := q.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		async := name == "execute_async_query"
		timeoutMS := intArg(args, "timeout_ms", q.cfg.DefaultQueryTimeoutMS)
		result, err := client.ExecuteQuery(ctx, sql, async, timeoutMS)
		if err != nil {
			return "", err
		}
		if async {
			queryID := stringField(result, "queryId", "unknown")
			return fmt.Sprintf("Async query started successfully.\n\nQuery ID: %s\n\n"+
				"Use 'get_query_status' to check progress and 'get_query_results' to retrieve results.", queryID), nil
		}
		return "Query executed successfully:\n\n" + formatJSON(result), nil

	case "get_query_results", "get_query_status", "cancel_query":
		queryID, err := stringArg(args, "query_id")
		if err != nil {
			return "", err
		}
		client, err := q.open()
		if err != nil {
			return "", err
		}
		defer client.Close()

		switch name {
		case "get_query_results":
			result, err := client.GetQueryResults(ctx, queryID)
			if err != nil {
				return "", err
			}
			return "Query results:\n\n" + formatJSON(result), nil
		case "get_query_status":
			status, err := client.GetQueryStatus(ctx, queryID)
			if err != nil {
				return "", err
			}
			return "Query status:\n\n" + formatJSON(status), nil
		default:
			result, err := client.CancelQuery(ctx, queryID)
			if err != nil {
				return "", err
			}
			return "Query cancelled successfully.\n\n" + formatJSON(result), nil
		}

	default:
		return "", errmodel.System("unrouted_tool", "query registry cannot handle "+name, nil)
	}
}
