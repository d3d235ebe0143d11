package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultEndpoint is where a locally running embedding server listens unless
// configured otherwise.
const defaultEndpoint = "http://127.0.0.1:8121"

// localProvider talks to an embedding server over HTTP JSON. The server must
// answer GET / with 200 when healthy and POST /embed with one vector per
// input text.
type localProvider struct {
	endpoint string
	client   *http.Client
}

// newLocalProvider creates a provider for a local embedding server. An empty
// endpoint falls back to defaultEndpoint.
func newLocalProvider(endpoint string) (*localProvider, error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &localProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Initialize verifies the server is reachable and healthy.
func (p *localProvider) Initialize(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding server unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server health check returned status %d", resp.StatusCode)
	}
	return nil
}

// embedRequest represents the JSON request body for the /embed endpoint.
type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

// embedResponse represents the JSON response from the /embed endpoint.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed converts a slice of text strings into their vector representations.
func (p *localProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	jsonData, err := json.Marshal(embedRequest{Texts: texts, Mode: string(mode)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/embed", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding server returned %d vectors for %d texts",
			len(embedResp.Embeddings), len(texts))
	}
	return embedResp.Embeddings, nil
}

// Dimensions returns the dimensionality of the embeddings (384 for
// BGE-small class models).
func (p *localProvider) Dimensions() int {
	return 384
}

// Close releases resources; the provider holds no background state.
func (p *localProvider) Close() error {
	return nil
}
