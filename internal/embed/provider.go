// Package embed defines the text-to-vector capability behind the semantic
// index. Implementations wrap a local embedding server, the OpenAI API, or a
// deterministic mock; the pipeline and searcher depend only on the Provider
// interface.
package embed

import "context"

// Mode specifies the type of embedding to generate. Retrieval models encode
// search queries and indexed passages differently, so callers say which side
// of the search they are embedding.
type Mode string

const (
	// ModeQuery generates embeddings for user search text.
	ModeQuery Mode = "query"

	// ModePassage generates embeddings for catalogued entity text.
	ModePassage Mode = "passage"
)

// Provider converts text into embedding vectors.
type Provider interface {
	// Initialize prepares the provider and blocks until it is ready to
	// serve Embed calls: connectivity checks, credential validation.
	// Must be called before Embed().
	Initialize(ctx context.Context) error

	// Embed converts texts into vectors, one per input, in input order.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns the width of the vectors this provider produces.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
