package embed

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openaiProvider embeds text through the OpenAI embeddings API.
type openaiProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// newOpenAIProvider creates an OpenAI-backed provider. The model defaults to
// text-embedding-3-small when not set.
func newOpenAIProvider(apiKey, model string) (*openaiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai embedding provider requires an API key")
	}

	m := openai.SmallEmbedding3
	if model != "" {
		m = openai.EmbeddingModel(model)
	}
	dims := 1536
	if m == openai.LargeEmbedding3 {
		dims = 3072
	}

	return &openaiProvider{
		client:     openai.NewClient(apiKey),
		model:      m,
		dimensions: dims,
	}, nil
}

// Initialize is a no-op: the API is stateless and credentials are checked on
// the first request.
func (p *openaiProvider) Initialize(ctx context.Context) error {
	return nil
}

// Embed requests embeddings for all texts in a single API call. OpenAI
// embedding models do not distinguish query and passage inputs, so the mode
// is ignored.
func (p *openaiProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("openai returned embedding with index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	return embeddings, nil
}

// Dimensions returns the vector width of the configured model.
func (p *openaiProvider) Dimensions() int {
	return p.dimensions
}

// Close is a no-op; the API client holds no connections.
func (p *openaiProvider) Close() error {
	return nil
}
