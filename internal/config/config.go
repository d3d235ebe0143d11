// Package config loads lumen configuration from .lumen/config.yml with
// environment variable overrides.
package config

import (
	"os"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/semantic"
)

// DefaultDir is the per-project directory holding the config file and the
// catalogue.
const DefaultDir = ".lumen"

// Config represents the complete lumen configuration.
// It can be loaded from .lumen/config.yml with environment variable overrides.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "mock", "local" or "openai"
	Model    string `yaml:"model" mapstructure:"model"`       // OpenAI model override
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"` // local embedding server URL
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`   // OpenAI key; prefer LUMEN_EMBEDDING_API_KEY
}

// SearchConfig tunes semantic search.
type SearchConfig struct {
	Threshold      float64 `yaml:"threshold" mapstructure:"threshold"`               // minimum similarity for a hit
	Limit          int     `yaml:"limit" mapstructure:"limit"`                       // default result count
	QueryCacheSize int     `yaml:"query_cache_size" mapstructure:"query_cache_size"` // memoized query embeddings, 0 = package default
}

// PathsConfig defines which files to skip while scanning.
type PathsConfig struct {
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// ScanConfig tunes the extraction pipeline.
type ScanConfig struct {
	Workers        int `yaml:"workers" mapstructure:"workers"`                   // parallel extraction workers, 0 = NumCPU
	EmbedBatchSize int `yaml:"embed_batch_size" mapstructure:"embed_batch_size"` // texts per embedding request, 0 = package default
}

// StorageConfig selects the catalogue backend.
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // "json" or "sqlite"
}

// Default returns a configuration with sensible defaults. The mock embedding
// provider is the default so a scan works with nothing else configured.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "mock",
		},
		Search: SearchConfig{
			Threshold: semantic.DefaultThreshold,
			Limit:     10,
		},
		Paths: PathsConfig{
			Ignore: []string{}, // built-in directory ignores always apply
		},
		Scan: ScanConfig{
			Workers:        0,
			EmbedBatchSize: 0,
		},
		Storage: StorageConfig{
			Backend: "json",
		},
	}
}

// ProviderConfig maps the embedding section onto the embed factory config.
// An empty api_key falls back to OPENAI_API_KEY so keys can live in a .env
// file instead of the project config.
func (c *Config) ProviderConfig() embed.Config {
	key := c.Embedding.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	return embed.Config{
		Provider: c.Embedding.Provider,
		Endpoint: c.Embedding.Endpoint,
		APIKey:   key,
		Model:    c.Embedding.Model,
	}
}

// SearcherConfig maps the search section onto the semantic searcher config.
func (c *Config) SearcherConfig() semantic.Config {
	return semantic.Config{
		Threshold:      c.Search.Threshold,
		QueryCacheSize: c.Search.QueryCacheSize,
	}
}
