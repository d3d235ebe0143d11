package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/entity"
)

// Test Plan for Searcher:
// - Round trip: querying an entity's name returns it first with score >= 0.3
// - Ranking: a descriptive query ranks the best-documented match first
// - Threshold: unrelated queries return ErrNoMatch
// - Kind and language filters narrow results natively
// - Equal scores break by insertion sequence
// - Reload swaps the corpus atomically
// - Query-time embedding failure falls back to substring matching

// testEntities returns documented entities spanning kinds and languages.
func testEntities() []entity.Entity {
	return []entity.Entity{
		{
			ID: "id-calc", Kind: entity.KindMethod, Name: "CalculateOrderTotal",
			Language: entity.LangJava, Unit: "src/OrderService.java",
			Documentation: "Compute the grand total for an order.",
			Parameters:    []entity.Param{{Name: "order"}},
			Span:          entity.Span{StartLine: 10, EndLine: 14},
			Visibility:    entity.VisibilityPublic,
		},
		{
			ID: "id-create", Kind: entity.KindFunction, Name: "create_user",
			Language: entity.LangPython, Unit: "src/models.py",
			Documentation: "Create a user record.",
			Parameters:    []entity.Param{{Name: "name"}, {Name: "email"}},
			Span:          entity.Span{StartLine: 3, EndLine: 9},
			Visibility:    entity.VisibilityUnspecified,
		},
		{
			ID: "id-login", Kind: entity.KindFunction, Name: "login",
			Language: entity.LangJavaScript, Unit: "src/auth.js",
			Documentation: "Authenticate a user session.",
			Span:          entity.Span{StartLine: 1, EndLine: 5},
			Visibility:    entity.VisibilityUnspecified,
		},
		{
			ID: "id-orders", Kind: entity.KindTable, Name: "orders",
			Language: entity.LangSQL, Unit: "db/schema.sql",
			Documentation: "Customer order records with grand total amounts.",
			Span:          entity.Span{StartLine: 1, EndLine: 8},
			Visibility:    entity.VisibilityPublic,
		},
	}
}

// buildCorpus assembles a corpus, embedding each entity with the mock
// provider when withEmbeddings is set.
func buildCorpus(t *testing.T, provider embed.Provider, entities []entity.Entity, withEmbeddings bool) *entity.Corpus {
	t.Helper()

	corpus := entity.NewCorpus()
	for _, e := range entities {
		if withEmbeddings {
			vectors, err := provider.Embed(context.Background(), []string{e.EmbeddingText()}, embed.ModePassage)
			require.NoError(t, err)
			e.Embedding = vectors[0]
		}
		require.NoError(t, corpus.Add(e))
	}
	return corpus
}

func newTestSearcher(t *testing.T, withEmbeddings bool) *Searcher {
	t.Helper()

	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)

	corpus := buildCorpus(t, provider, testEntities(), withEmbeddings)
	searcher, err := NewSearcher(context.Background(), corpus, provider, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { searcher.Close() })
	return searcher
}

func TestSearcher_RoundTrip(t *testing.T) {
	t.Parallel()

	searcher := newTestSearcher(t, true)
	assert.False(t, searcher.Degraded())

	result, err := searcher.Query(context.Background(), "CalculateOrderTotal")
	require.NoError(t, err)

	assert.Equal(t, "id-calc", result.Entity.ID)
	assert.GreaterOrEqual(t, result.Score, 0.3)
	assert.False(t, result.Degraded)
}

func TestSearcher_Ranking(t *testing.T) {
	t.Parallel()

	searcher := newTestSearcher(t, true)

	results, err := searcher.Search(context.Background(), "calculate order total", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "id-calc", results[0].Entity.ID, "best word overlap should rank first")
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.3)
	}
}

func TestSearcher_NoMatch(t *testing.T) {
	t.Parallel()

	searcher := newTestSearcher(t, true)

	_, err := searcher.Query(context.Background(), "xyzzy frobnicate quux")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestSearcher_KindFilter(t *testing.T) {
	t.Parallel()

	searcher := newTestSearcher(t, true)

	results, err := searcher.Search(context.Background(), "order total", &Options{Kind: "table"})
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, entity.KindTable, r.Entity.Kind)
	}
	assert.Equal(t, "id-orders", results[0].Entity.ID)
}

func TestSearcher_LanguageFilter(t *testing.T) {
	t.Parallel()

	searcher := newTestSearcher(t, true)

	results, err := searcher.Search(context.Background(), "create user", &Options{Language: "python"})
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, entity.LangPython, r.Entity.Language)
	}
	assert.Equal(t, "id-create", results[0].Entity.ID)
}

func TestSearcher_TieBreakByInsertion(t *testing.T) {
	t.Parallel()

	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)

	// Identical embedding text in two units: scores tie exactly.
	twins := []entity.Entity{
		{ID: "id-a", Kind: entity.KindFunction, Name: "duplicate_handler",
			Language: entity.LangPython, Unit: "src/first.py",
			Documentation: "Handle duplicates.", Visibility: entity.VisibilityUnspecified},
		{ID: "id-b", Kind: entity.KindFunction, Name: "duplicate_handler",
			Language: entity.LangPython, Unit: "src/second.py",
			Documentation: "Handle duplicates.", Visibility: entity.VisibilityUnspecified},
	}
	corpus := buildCorpus(t, provider, twins, true)

	searcher, err := NewSearcher(context.Background(), corpus, provider, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { searcher.Close() })

	results, err := searcher.Search(context.Background(), "duplicate_handler", nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, "id-a", results[0].Entity.ID, "earlier insertion wins the tie")
	assert.Equal(t, "id-b", results[1].Entity.ID)
}

func TestSearcher_Reload(t *testing.T) {
	t.Parallel()

	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)

	corpus := buildCorpus(t, provider, testEntities(), true)
	searcher, err := NewSearcher(context.Background(), corpus, provider, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { searcher.Close() })

	replacement := []entity.Entity{
		{ID: "id-new", Kind: entity.KindFunction, Name: "archive_invoice",
			Language: entity.LangPython, Unit: "src/billing.py",
			Documentation: "Archive a paid invoice.", Visibility: entity.VisibilityUnspecified},
	}
	require.NoError(t, searcher.Reload(context.Background(), buildCorpus(t, provider, replacement, true)))

	result, err := searcher.Query(context.Background(), "archive_invoice")
	require.NoError(t, err)
	assert.Equal(t, "id-new", result.Entity.ID)

	_, err = searcher.Query(context.Background(), "CalculateOrderTotal")
	assert.ErrorIs(t, err, ErrNoMatch, "old corpus entities are gone after reload")
}

func TestSearcher_EmptyCorpus(t *testing.T) {
	t.Parallel()

	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)

	searcher, err := NewSearcher(context.Background(), entity.NewCorpus(), provider, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { searcher.Close() })

	_, err = searcher.Search(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, ErrNoMatch)
}

// brokenProvider fails every Embed call.
type brokenProvider struct{}

func (brokenProvider) Initialize(ctx context.Context) error { return nil }
func (brokenProvider) Embed(ctx context.Context, texts []string, mode embed.Mode) ([][]float32, error) {
	return nil, errors.New("provider offline")
}
func (brokenProvider) Dimensions() int { return 384 }
func (brokenProvider) Close() error    { return nil }

func TestSearcher_QueryTimeFallback(t *testing.T) {
	t.Parallel()

	mock, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)
	corpus := buildCorpus(t, mock, testEntities(), true)

	// Vectors are precomputed, so the build succeeds even though the
	// provider cannot embed queries anymore.
	searcher, err := NewSearcher(context.Background(), corpus, brokenProvider{}, Config{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { searcher.Close() })
	assert.False(t, searcher.Degraded())

	results, err := searcher.Search(context.Background(), "create_user", nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.True(t, results[0].Degraded, "substring fallback results carry the degraded flag")
	assert.Equal(t, "id-create", results[0].Entity.ID)
}

func TestWhereFilter(t *testing.T) {
	t.Parallel()

	assert.Nil(t, whereFilter(&Options{}))
	assert.Equal(t, map[string]string{"kind": "table"}, whereFilter(&Options{Kind: "table"}))
	assert.Equal(t,
		map[string]string{"kind": "function", "language": "python"},
		whereFilter(&Options{Kind: "function", Language: "python"}))
}
