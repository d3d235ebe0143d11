// Package mcp exposes the catalogue to MCP clients over stdio: a search tool,
// an entity-lookup tool, and a file watcher that hot-reloads the catalogue.
package mcp

// Implementation Plan:
// 1. entityPayload - entity serialization without the embedding vector
// 2. Request/Response types for the lumen_search tool
// 3. Request/Response types for the lumen_describe tool

import (
	"encoding/json"

	"github.com/lumendocs/lumen/internal/entity"
)

// entityPayload wraps an entity so tool responses exclude the embedding
// vector. Vectors dominate the payload size and are useless to MCP clients.
type entityPayload struct {
	*entity.Entity
}

// MarshalJSON implements custom JSON marshaling that excludes the Embedding field.
func (p entityPayload) MarshalJSON() ([]byte, error) {
	type Alias entity.Entity
	return json.Marshal(&struct {
		Embedding []float32 `json:"embedding,omitempty"`
		*Alias
	}{
		Embedding: nil, // Always exclude embedding
		Alias:     (*Alias)(p.Entity),
	})
}

// SearchRequest represents the JSON request schema for the lumen_search MCP tool.
type SearchRequest struct {
	Query    string `json:"query" jsonschema:"required,description=Natural language search query"`
	Limit    int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100,default=15,description=Maximum number of results"`
	Kind     string `json:"kind,omitempty" jsonschema:"description=Filter by entity kind (function|method|class|table|view|procedure|sql_function)"`
	Language string `json:"language,omitempty" jsonschema:"description=Filter by source language (python|javascript|java|sql)"`
	Mode     string `json:"mode,omitempty" jsonschema:"default=semantic,description=Search mode (semantic|exact)"`
}

// SearchResult is one hit in a lumen_search response.
type SearchResult struct {
	Entity entityPayload `json:"entity"`
	Score  float64       `json:"score"`

	// Degraded marks hits produced by substring matching because
	// embeddings were unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// SearchResponse represents the JSON response schema for the lumen_search MCP tool.
type SearchResponse struct {
	Results []*SearchResult `json:"results"`
	Total   int             `json:"total"`

	// Degraded reports that the catalogue carries no embeddings, so every
	// search runs as a substring match.
	Degraded bool `json:"degraded,omitempty"`
}

// DescribeRequest represents the JSON request schema for the lumen_describe MCP tool.
type DescribeRequest struct {
	ID   string `json:"id,omitempty" jsonschema:"description=Catalogue id of the entity"`
	Name string `json:"name,omitempty" jsonschema:"description=Exact entity name; used when id is not given"`
}

// DescribeResponse represents the JSON response schema for the lumen_describe MCP tool.
type DescribeResponse struct {
	Entity   entityPayload   `json:"entity"`
	Parent   *entityPayload  `json:"parent,omitempty"`
	Children []entityPayload `json:"children,omitempty"`
}
