package mcp

// Implementation Plan:
// 1. AddDescribeTool - composable tool registration function
// 2. Look up one entity by catalogue id, or by exact name
// 3. Attach the parent and the contained entities (class -> methods)
// 4. Return as JSON text (mcp-go convention)

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lumendocs/lumen/internal/entity"
	mcputils "github.com/lumendocs/lumen/internal/mcp-utils"
	"github.com/lumendocs/lumen/internal/semantic"
)

// AddDescribeTool registers the lumen_describe tool with an MCP server.
func AddDescribeTool(s *server.MCPServer, searcher *semantic.Searcher) {
	tool := mcp.NewTool(
		"lumen_describe",
		mcp.WithDescription("Look up one catalogued entity by id or exact name. Returns the full record with the parent and contained entities (e.g. a class with its methods)."),
		mcp.WithString("id",
			mcp.Description("Catalogue id of the entity, as returned by lumen_search")),
		mcp.WithString("name",
			mcp.Description("Exact entity name, used when id is not given. The first match in catalogue order wins.")),
	)

	s.AddTool(tool, createDescribeHandler(searcher))
}

// createDescribeHandler creates the handler function for the lumen_describe tool.
func createDescribeHandler(searcher *semantic.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req DescribeRequest
		if err := mcputils.BindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if req.ID == "" && req.Name == "" {
			return mcp.NewToolResultError("id or name parameter is required"), nil
		}

		corpus := searcher.Corpus()

		var found *entity.Entity
		if req.ID != "" {
			if e, ok := corpus.Get(req.ID); ok {
				found = e
			}
		} else {
			for i := 0; i < corpus.Len(); i++ {
				if e := corpus.At(i); e.Name == req.Name {
					found = e
					break
				}
			}
		}
		if found == nil {
			if req.ID != "" {
				return mcp.NewToolResultError(fmt.Sprintf("no entity with id %q", req.ID)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("no entity named %q", req.Name)), nil
		}

		response := &DescribeResponse{Entity: entityPayload{found}}
		if found.ParentID != "" {
			if parent, ok := corpus.Get(found.ParentID); ok {
				response.Parent = &entityPayload{parent}
			}
		}
		for _, child := range corpus.ChildrenOf(found.ID) {
			response.Children = append(response.Children, entityPayload{child})
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
