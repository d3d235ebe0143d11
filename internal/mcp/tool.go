package mcp

// Implementation Plan:
// 1. AddSearchTool - composable tool registration function
// 2. createSearchHandler - handler factory that captures the searcher
// 3. Parse SearchRequest from MCP arguments
// 4. Execute searcher.Search with options
// 5. Build SearchResponse
// 6. Return as JSON text (mcp-go convention)

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcputils "github.com/lumendocs/lumen/internal/mcp-utils"
	"github.com/lumendocs/lumen/internal/semantic"
)

// AddSearchTool registers the lumen_search tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddSearchTool(s *server.MCPServer, searcher *semantic.Searcher) {
	tool := mcp.NewTool(
		"lumen_search",
		mcp.WithDescription("Search the code documentation catalogue with natural language. Returns functions, classes, tables and other catalogued entities ranked by relevance."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query (e.g., 'calculate order total', 'customer table')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("kind",
			mcp.Description("Filter by entity kind: function, method, class, table, view, procedure or sql_function. Leave empty for all kinds.")),
		mcp.WithString("language",
			mcp.Description("Filter by source language: python, javascript, java or sql. Leave empty for all languages.")),
		mcp.WithString("mode",
			mcp.Description("Search mode: 'semantic' (default) ranks by embedding similarity, 'exact' matches substrings in names and documentation.")),
	)

	s.AddTool(tool, createSearchHandler(searcher))
}

// createSearchHandler creates the handler function for the lumen_search tool.
func createSearchHandler(searcher *semantic.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req SearchRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		options := &semantic.Options{
			Limit:    req.Limit,
			Kind:     req.Kind,
			Language: req.Language,
		}
		switch req.Mode {
		case "", "semantic":
		case "exact":
			options.Exact = true
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown mode %q, expected 'semantic' or 'exact'", req.Mode)), nil
		}

		// No match is an empty response, not a tool failure.
		results, err := searcher.Search(ctx, req.Query, options)
		if err != nil && !errors.Is(err, semantic.ErrNoMatch) {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &SearchResponse{
			Results:  make([]*SearchResult, 0, len(results)),
			Total:    len(results),
			Degraded: searcher.Degraded(),
		}
		for _, r := range results {
			response.Results = append(response.Results, &SearchResult{
				Entity:   entityPayload{r.Entity},
				Score:    r.Score,
				Degraded: r.Degraded,
			})
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
