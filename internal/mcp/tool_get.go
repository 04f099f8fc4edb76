package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/propdoc/propdoc/internal/property"
)

// AddPropertyGetTool registers the property_get tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddPropertyGetTool(s *server.MCPServer, doc *property.Document) {
	tool := mcp.NewTool(
		"property_get",
		mcp.WithDescription("Look up a single configuration property by name and return its full record: type, default, bounds, visibility, restart and enterprise metadata. Legacy alias names resolve to their canonical property."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Property name (e.g., 'log_retention_ms'). Aliases are accepted.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createPropertyGetHandler(doc))
}

// createPropertyGetHandler creates the handler function for property_get.
func createPropertyGetHandler(doc *property.Document) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		name, err := parseStringArg(argsMap, "name", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec := lookupProperty(doc, name)
		if rec == nil {
			return mcp.NewToolResultError(fmt.Sprintf("unknown property: %s", name)), nil
		}

		jsonData, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal property: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// lookupProperty finds a record by canonical name, then by alias.
func lookupProperty(doc *property.Document, name string) *property.Record {
	if rec, ok := doc.Properties[name]; ok {
		return rec
	}
	for _, canonical := range doc.Names() {
		for _, alias := range doc.Properties[canonical].Aliases {
			if alias == name {
				return doc.Properties[canonical]
			}
		}
	}
	return nil
}
