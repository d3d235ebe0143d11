package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string // explicit file, bypasses the .lumen search path
}

// NewLoader creates a configuration loader that searches <rootDir>/.lumen
// for config.yml or config.yaml.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads exactly the given config file.
// Unlike the directory search, a missing explicit file is an error.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (LUMEN_*)
// 2. Config file (.lumen/config.yml or the explicit --config file)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		configDir := filepath.Join(l.rootDir, DefaultDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("LUMEN")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., LUMEN_EMBEDDING_PROVIDER)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	// Embedding configuration
	v.BindEnv("embedding.provider")
	v.BindEnv("embedding.model")
	v.BindEnv("embedding.endpoint")
	v.BindEnv("embedding.api_key")

	// Search configuration
	v.BindEnv("search.threshold")
	v.BindEnv("search.limit")
	v.BindEnv("search.query_cache_size")

	// Scan configuration
	v.BindEnv("scan.workers")
	v.BindEnv("scan.embed_batch_size")

	// Storage configuration
	v.BindEnv("storage.backend")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Embedding defaults
	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.model", defaults.Embedding.Model)
	v.SetDefault("embedding.endpoint", defaults.Embedding.Endpoint)
	v.SetDefault("embedding.api_key", defaults.Embedding.APIKey)

	// Search defaults
	v.SetDefault("search.threshold", defaults.Search.Threshold)
	v.SetDefault("search.limit", defaults.Search.Limit)
	v.SetDefault("search.query_cache_size", defaults.Search.QueryCacheSize)

	// Paths defaults
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	// Scan defaults
	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.embed_batch_size", defaults.Scan.EmbedBatchSize)

	// Storage defaults
	v.SetDefault("storage.backend", defaults.Storage.Backend)
}

// LoadConfigFromDir loads configuration from a specific scan root.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfigFromFile loads configuration from an explicit config file.
func LoadConfigFromFile(configFile string) (*Config, error) {
	return NewFileLoader(configFile).Load()
}
