package embed

import "fmt"

// Config contains configuration for creating an embedding provider.
type Config struct {
	// Provider specifies which embedding provider to use: "mock", "local",
	// or "openai". Empty selects the mock.
	Provider string

	// Endpoint is the base URL of the local embedding server.
	Endpoint string

	// APIKey authenticates against the OpenAI API.
	APIKey string

	// Model overrides the OpenAI embedding model.
	Model string
}

// NewProvider creates an embedding provider based on the configuration. The
// mock is the default so scans work with no embedding service configured.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "mock", "":
		return newMockProvider(), nil

	case "local":
		return newLocalProvider(config.Endpoint)

	case "openai":
		return newOpenAIProvider(config.APIKey, config.Model)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: mock, local, openai)", config.Provider)
	}
}
