package mcp

// Test Plan for lumen_search tool:
// 1. Tool registration is composable on a bare MCP server
// 2. Valid request returns ranked results as JSON text
// 3. Responses never carry embedding vectors
// 4. Missing query is a tool error, not a transport error
// 5. Unknown mode is rejected
// 6. No match produces an empty response with total 0
// 7. Exact mode answers by substring
// 8. Kind filter narrows results

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/semantic"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testEntities() []entity.Entity {
	return []entity.Entity{
		{
			ID:            "a1b2c3d4e5f60718",
			Kind:          entity.KindFunction,
			Name:          "create_user",
			Language:      entity.LangPython,
			Unit:          "src/users.py",
			Parameters:    []entity.Param{{Name: "name"}, {Name: "email"}},
			Documentation: "Create a new user account.",
			Span:          entity.Span{StartLine: 10, EndLine: 24},
			UsageExample:  "result = create_user(arg1, arg2)",
			Visibility:    entity.VisibilityPublic,
		},
		{
			ID:            "1111aaaa2222bbbb",
			Kind:          entity.KindClass,
			Name:          "Account",
			Language:      entity.LangPython,
			Unit:          "src/models.py",
			Documentation: "Customer account model.",
			Span:          entity.Span{StartLine: 5, EndLine: 40},
		},
		{
			ID:            "3333cccc4444dddd",
			Kind:          entity.KindMethod,
			Name:          "close",
			Language:      entity.LangPython,
			Unit:          "src/models.py",
			Documentation: "Close the account.",
			Span:          entity.Span{StartLine: 30, EndLine: 36},
			ParentID:      "1111aaaa2222bbbb",
		},
		{
			ID:            "5555eeee6666ffff",
			Kind:          entity.KindTable,
			Name:          "orders",
			Language:      entity.LangSQL,
			Unit:          "db/schema.sql",
			Documentation: "Customer orders.",
			Span:          entity.Span{StartLine: 1, EndLine: 8},
		},
	}
}

// testSearcher builds a searcher over the fixture corpus with mock-provider
// embeddings precomputed, the way a scan would leave them.
func testSearcher(t *testing.T) *semantic.Searcher {
	t.Helper()
	ctx := context.Background()

	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)
	require.NoError(t, provider.Initialize(ctx))

	corpus := entity.NewCorpus()
	for _, e := range testEntities() {
		require.NoError(t, corpus.Add(e))
	}

	texts := make([]string, 0, corpus.Len())
	for i := 0; i < corpus.Len(); i++ {
		texts = append(texts, corpus.At(i).EmbeddingText())
	}
	vectors, err := provider.Embed(ctx, texts, embed.ModePassage)
	require.NoError(t, err)
	for i, vec := range vectors {
		corpus.At(i).Embedding = vec
	}

	searcher, err := semantic.NewSearcher(ctx, corpus, provider, semantic.Config{}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = searcher.Close() })
	return searcher
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return textContent.Text
}

// searchView mirrors the response JSON without the payload wrapper types.
type searchView struct {
	Results []struct {
		Entity   entity.Entity `json:"entity"`
		Score    float64       `json:"score"`
		Degraded bool          `json:"degraded"`
	} `json:"results"`
	Total    int  `json:"total"`
	Degraded bool `json:"degraded"`
}

func TestAddSearchTool(t *testing.T) {
	t.Parallel()

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	AddSearchTool(mcpServer, testSearcher(t))

	assert.NotNil(t, mcpServer)
}

func TestSearchHandler_ValidRequest(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{
		"query": "create a new user account",
	})
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.NotContains(t, text, `"embedding"`, "payloads must not carry vectors")

	var response searchView
	require.NoError(t, json.Unmarshal([]byte(text), &response))

	require.NotZero(t, response.Total)
	assert.Equal(t, "create_user", response.Results[0].Entity.Name)
	assert.Equal(t, "a1b2c3d4e5f60718", response.Results[0].Entity.ID)
	assert.Greater(t, response.Results[0].Score, 0.3)
	assert.False(t, response.Degraded)
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "query parameter is required")
}

func TestSearchHandler_UnknownMode(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{
		"query": "orders",
		"mode":  "fuzzy",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown mode")
}

func TestSearchHandler_NoMatchIsEmptyResponse(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{
		"query": "zzz qqq xyzzy",
	})
	assert.False(t, result.IsError)

	var response searchView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))

	assert.Zero(t, response.Total)
	assert.Empty(t, response.Results)
}

func TestSearchHandler_ExactMode(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{
		"query": "orders",
		"mode":  "exact",
	})
	assert.False(t, result.IsError)

	var response searchView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))

	require.NotZero(t, response.Total)
	assert.Equal(t, "orders", response.Results[0].Entity.Name)
	assert.False(t, response.Results[0].Degraded, "requested exact mode is not degraded")
}

func TestSearchHandler_KindFilter(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	result := callTool(t, handler, map[string]interface{}{
		"query": "customer orders",
		"kind":  "table",
		"limit": float64(10),
	})
	assert.False(t, result.IsError)

	var response searchView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))

	require.NotZero(t, response.Total)
	for _, r := range response.Results {
		assert.Equal(t, entity.KindTable, r.Entity.Kind)
	}
}

func TestSearchHandler_StringLimitCoerces(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(testSearcher(t))

	// Some MCP clients send every argument as a string.
	result := callTool(t, handler, map[string]interface{}{
		"query": "account",
		"limit": "1",
	})
	assert.False(t, result.IsError)

	var response searchView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Len(t, response.Results, 1)
}
