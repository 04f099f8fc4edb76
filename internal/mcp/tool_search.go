package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/propdoc/propdoc/internal/search"
)

// AddPropertySearchTool registers the property_search tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddPropertySearchTool(s *server.MCPServer, searcher *search.Searcher) {
	tool := mcp.NewTool(
		"property_search",
		mcp.WithDescription(`Full-text search over configuration properties using bleve query syntax.

Supports:
- Field scoping: name:enable_sasl, description:retention, aliases:delete_retention_ms, type:integer, visibility:tunable, defined_in:cluster/configuration.h
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "log segment"
- Wildcards: name:cloud_storage_* (prefix matching)

Bare terms match descriptions and other indexed fields. Property names
and aliases are indexed verbatim, so scoped name queries are exact.

Examples:
- retention - Find properties about retention
- description:"tiered storage" AND visibility:user - Exact phrase, user-visible only
- name:kafka_* - Everything in the kafka namespace`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string with field scoping and boolean operators")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("visibility",
			mcp.Description("Filter to one visibility class: user, tunable, or deprecated")),
		mcp.WithBoolean("enterprise",
			mcp.Description("Filter on the enterprise flag: true for licensed-only properties, false for community properties")),
		mcp.WithString("defined_in",
			mcp.Description("Filter on the declaration path, wildcard syntax (e.g., 'cluster/*')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createPropertySearchHandler(searcher))
}

// createPropertySearchHandler creates the handler function for property_search.
func createPropertySearchHandler(searcher *search.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, err := parseStringArg(argsMap, "query", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		visibility, err := parseStringArg(argsMap, "visibility", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		definedIn, err := parseStringArg(argsMap, "defined_in", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		options := &search.Options{
			Limit:      parseIntArg(argsMap, "limit", 15),
			Visibility: visibility,
			Enterprise: parseBoolArgPtr(argsMap, "enterprise"),
			DefinedIn:  definedIn,
		}

		results, err := searcher.Search(ctx, query, options)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &PropertySearchResponse{
			Query:   query,
			Results: results,
			Total:   len(results),
			Metadata: SearchResponseMetadata{
				TookMs: int(time.Since(startTime).Milliseconds()),
			},
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// PropertySearchResponse represents the JSON response schema for the
// property_search MCP tool.
type PropertySearchResponse struct {
	Query    string                 `json:"query"`
	Results  []*search.Result       `json:"results"`
	Total    int                    `json:"total"`
	Metadata SearchResponseMetadata `json:"metadata"`
}

// SearchResponseMetadata contains timing information.
type SearchResponseMetadata struct {
	TookMs int `json:"took_ms"`
}
