// Package semantic answers natural-language queries over a catalogued corpus.
package semantic

// Implementation Plan:
// 1. Searcher - one query surface over two indexes
// 2. chromem-go collection for vector search (precomputed entity embeddings)
// 3. bleve mem-only index for exact substring search
// 4. Query embedding memoized in an otter cache
// 5. Over-fetch, re-sort by (similarity desc, insertion seq asc), threshold cut
// 6. Degraded mode: no vectors -> exact substring search, results flagged
// 7. Reload support with atomic swap (RWMutex)

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/maypok86/otter"
	"github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/entity"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a semantic hit.
	DefaultThreshold = 0.3

	// resultMultiplier controls over-fetching for re-sort and filter headroom.
	resultMultiplier = 2

	defaultLimit          = 15
	maxLimit              = 100
	defaultQueryCacheSize = 1024
)

// ErrNoMatch is returned when no entity scores at or above the threshold.
var ErrNoMatch = errors.New("no entity matched the query")

// Result is one search hit.
type Result struct {
	Entity *entity.Entity `json:"entity"`
	Score  float64        `json:"score"`

	// Degraded marks results produced by substring matching because
	// embeddings were unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// Options narrows a search. The zero value means top results of any kind.
type Options struct {
	Limit    int
	Kind     string
	Language string

	// Exact skips the vector index and searches by substring.
	Exact bool
}

// Config parameterizes a Searcher.
type Config struct {
	// Threshold is the minimum similarity for a semantic hit; zero means
	// DefaultThreshold.
	Threshold float64

	// QueryCacheSize bounds the memoized query embeddings.
	QueryCacheSize int
}

// Searcher answers queries over one corpus. Queries are safe for concurrent
// use; Reload swaps the corpus atomically.
type Searcher struct {
	provider   embed.Provider
	threshold  float64
	logger     *logrus.Logger
	queryCache otter.Cache[string, []float32]

	mu         sync.RWMutex // Protects corpus and indexes during reload
	corpus     *entity.Corpus
	db         *chromem.DB
	collection *chromem.Collection // nil when degraded
	exact      bleve.Index
	degraded   bool
}

// NewSearcher builds a searcher over the corpus. Entities carrying embeddings
// feed the vector index; when any are missing the searcher starts degraded
// and answers by substring instead.
func NewSearcher(ctx context.Context, corpus *entity.Corpus, provider embed.Provider, config Config, logger *logrus.Logger) (*Searcher, error) {
	if provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if config.Threshold <= 0 {
		config.Threshold = DefaultThreshold
	}
	if config.QueryCacheSize <= 0 {
		config.QueryCacheSize = defaultQueryCacheSize
	}

	cache, err := otter.MustBuilder[string, []float32](config.QueryCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	s := &Searcher{
		provider:   provider,
		threshold:  config.Threshold,
		logger:     logger,
		queryCache: cache,
		db:         chromem.NewDB(),
	}
	if err := s.Reload(ctx, corpus); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds both indexes from the corpus and swaps them in atomically.
// In-flight queries finish against the old indexes.
func (s *Searcher) Reload(ctx context.Context, corpus *entity.Corpus) error {
	if corpus == nil {
		return fmt.Errorf("corpus is required")
	}

	exact, err := buildExactIndex(corpus)
	if err != nil {
		return err
	}

	var collection *chromem.Collection
	degraded := false
	if corpusEmbedded(corpus) {
		collection, err = s.buildCollection(ctx, corpus)
		if err != nil {
			exact.Close()
			return err
		}
	} else {
		degraded = true
		s.logger.Warn("corpus has no embeddings, semantic search degraded to substring match")
	}

	s.mu.Lock()
	oldExact := s.exact
	s.corpus = corpus
	s.collection = collection
	s.exact = exact
	s.degraded = degraded
	s.mu.Unlock()

	if oldExact != nil {
		oldExact.Close()
	}
	return nil
}

// corpusEmbedded reports whether every entity carries an embedding vector.
// An empty corpus counts as embedded; queries against it just find nothing.
func corpusEmbedded(corpus *entity.Corpus) bool {
	for i := 0; i < corpus.Len(); i++ {
		if len(corpus.At(i).Embedding) == 0 {
			return false
		}
	}
	return true
}

// buildCollection creates a fresh chromem collection holding one document per
// entity with its precomputed embedding. Creating a collection under the same
// name replaces the previous one in the db.
func (s *Searcher) buildCollection(ctx context.Context, corpus *entity.Corpus) (*chromem.Collection, error) {
	collection, err := s.db.CreateCollection("lumen", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		doc := chromem.Document{
			ID:        e.ID,
			Content:   e.EmbeddingText(),
			Embedding: e.Embedding,
			Metadata: map[string]string{
				"kind":     string(e.Kind),
				"language": string(e.Language),
				"unit":     e.Unit,
				"seq":      strconv.Itoa(i),
			},
		}
		if err := collection.AddDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to add entity %s: %w", e.ID, err)
		}
	}
	return collection, nil
}

// Degraded reports whether the searcher lacks a vector index.
func (s *Searcher) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Corpus returns the corpus currently being searched.
func (s *Searcher) Corpus() *entity.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Query returns the single best match for the query text, or ErrNoMatch when
// nothing scores at or above the threshold.
func (s *Searcher) Query(ctx context.Context, query string) (*Result, error) {
	results, err := s.Search(ctx, query, &Options{Limit: 1})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Search returns up to Limit matches ordered by score. Vector queries fall
// back to substring matching, flagged degraded, when the query cannot be
// embedded.
func (s *Searcher) Search(ctx context.Context, query string, options *Options) ([]*Result, error) {
	if options == nil {
		options = &Options{}
	}
	limit := options.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	s.mu.RLock()
	corpus := s.corpus
	collection := s.collection
	exact := s.exact
	degraded := s.degraded
	s.mu.RUnlock()

	if corpus == nil || corpus.Len() == 0 {
		return nil, ErrNoMatch
	}

	if options.Exact {
		return searchExact(exact, corpus, query, limit, options, false)
	}
	if degraded || collection == nil {
		return searchExact(exact, corpus, query, limit, options, true)
	}

	queryVec, err := s.queryEmbedding(ctx, query)
	if err != nil {
		s.logger.WithError(err).Warn("query embedding failed, falling back to substring match")
		return searchExact(exact, corpus, query, limit, options, true)
	}

	return s.searchVector(ctx, collection, corpus, queryVec, limit, options)
}

// queryEmbedding embeds query text in query mode, memoizing results so
// repeated queries skip the provider round trip.
func (s *Searcher) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := s.queryCache.Get(query); ok {
		return vec, nil
	}

	vectors, err := s.provider.Embed(ctx, []string{query}, embed.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	s.queryCache.Set(query, vectors[0])
	return vectors[0], nil
}

type scoredHit struct {
	id    string
	score float64
	seq   int
}

func (s *Searcher) searchVector(ctx context.Context, collection *chromem.Collection, corpus *entity.Corpus, queryVec []float32, limit int, options *Options) ([]*Result, error) {
	nResults := limit * resultMultiplier
	if count := collection.Count(); nResults > count {
		nResults = count
	}
	if nResults == 0 {
		return nil, ErrNoMatch
	}

	docs, err := collection.QueryEmbedding(ctx, queryVec, nResults, whereFilter(options), nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]scoredHit, 0, len(docs))
	for _, doc := range docs {
		if float64(doc.Similarity) < s.threshold {
			continue
		}
		seq, _ := strconv.Atoi(doc.Metadata["seq"])
		hits = append(hits, scoredHit{id: doc.ID, score: float64(doc.Similarity), seq: seq})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].seq < hits[j].seq
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]*Result, 0, len(hits))
	for _, h := range hits {
		if e, ok := corpus.Get(h.id); ok {
			results = append(results, &Result{Entity: e, Score: h.score})
		}
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}
	return results, nil
}

// whereFilter builds the native chromem metadata filter for kind and
// language. Both conditions must hold.
func whereFilter(options *Options) map[string]string {
	where := make(map[string]string)
	if options.Kind != "" {
		where["kind"] = options.Kind
	}
	if options.Language != "" {
		where["language"] = options.Language
	}
	if len(where) == 0 {
		return nil
	}
	return where
}

// Close releases the indexes and the query cache.
func (s *Searcher) Close() error {
	s.queryCache.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exact != nil {
		return s.exact.Close()
	}
	return nil
}
