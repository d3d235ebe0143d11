package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/lumendocs/lumen/internal/entity"
)

// buildExactIndex creates an in-memory bleve index over entity names and
// documentation. It serves the explicit exact mode and the degraded fallback
// when embeddings are unavailable.
func buildExactIndex(corpus *entity.Corpus) (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildExactMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create exact index: %w", err)
	}

	batch := index.NewBatch()
	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		doc := map[string]interface{}{
			"name":     flattenLower(e.Name),
			"doc":      flattenLower(e.Documentation),
			"kind":     string(e.Kind),
			"language": string(e.Language),
			"seq":      float64(i),
		}
		if err := batch.Index(e.ID, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index entity %s: %w", e.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to execute index batch: %w", err)
	}
	return index, nil
}

// buildExactMapping creates the index mapping for entity documents. Name and
// documentation are indexed as single lowercase keyword terms so wildcard
// queries behave as substring matches over the whole field.
func buildExactMapping() *mapping.IndexMappingImpl {
	keywordField := func(store bool) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = store
		m.Index = true
		return m
	}

	// Insertion sequence, stored only, for deterministic tie breaks.
	seqMapping := bleve.NewNumericFieldMapping()
	seqMapping.Store = true
	seqMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", keywordField(false))
	docMapping.AddFieldMappingsAt("doc", keywordField(false))
	docMapping.AddFieldMappingsAt("kind", keywordField(true))
	docMapping.AddFieldMappingsAt("language", keywordField(true))
	docMapping.AddFieldMappingsAt("seq", seqMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// flattenLower lowercases text and collapses all whitespace to single spaces
// so substring wildcards never have to cross a newline.
func flattenLower(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// searchExact runs a substring search over names and documentation. Name hits
// are boosted over documentation hits; equal scores break by insertion
// sequence. Results carry the degraded flag when this path stands in for
// vector search.
func searchExact(index bleve.Index, corpus *entity.Corpus, queryStr string, limit int, options *Options, degraded bool) ([]*Result, error) {
	needle := flattenLower(queryStr)
	if needle == "" {
		return nil, ErrNoMatch
	}

	nameQuery := bleve.NewWildcardQuery("*" + needle + "*")
	nameQuery.SetField("name")
	nameQuery.SetBoost(2.0)

	docQuery := bleve.NewWildcardQuery("*" + needle + "*")
	docQuery.SetField("doc")

	queries := []query.Query{bleve.NewDisjunctionQuery(nameQuery, docQuery)}
	if options.Kind != "" {
		q := bleve.NewTermQuery(options.Kind)
		q.SetField("kind")
		queries = append(queries, q)
	}
	if options.Language != "" {
		q := bleve.NewTermQuery(options.Language)
		q.SetField("language")
		queries = append(queries, q)
	}

	finalQuery := queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	request := bleve.NewSearchRequestOptions(finalQuery, limit*resultMultiplier, 0, false)
	request.Fields = []string{"seq"}

	searchResult, err := index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("exact search failed: %w", err)
	}

	hits := make([]scoredHit, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		seq := 0
		if v, ok := hit.Fields["seq"].(float64); ok {
			seq = int(v)
		}
		hits = append(hits, scoredHit{id: hit.ID, score: hit.Score, seq: seq})
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
			results = append(results, &Result{Entity: e, Score: h.score, Degraded: degraded})
		}
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}
	return results, nil
}
