package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported embedding provider
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidThreshold indicates a search threshold outside [0, 1]
	ErrInvalidThreshold = errors.New("invalid search threshold")

	// ErrInvalidLimit indicates a non-positive search result limit
	ErrInvalidLimit = errors.New("invalid search limit")

	// ErrInvalidCacheSize indicates a negative query cache size
	ErrInvalidCacheSize = errors.New("invalid query cache size")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidBatchSize indicates a negative embedding batch size
	ErrInvalidBatchSize = errors.New("invalid embed batch size")

	// ErrInvalidBackend indicates an unsupported storage backend
	ErrInvalidBackend = errors.New("invalid storage backend")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}

	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}

	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	provider := strings.ToLower(cfg.Provider)
	if provider != "mock" && provider != "local" && provider != "openai" {
		return fmt.Errorf("%w: must be 'mock', 'local' or 'openai', got '%s'", ErrInvalidProvider, cfg.Provider)
	}
	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		errs = append(errs, fmt.Errorf("%w: threshold must be between 0 and 1, got %g", ErrInvalidThreshold, cfg.Threshold))
	}

	if cfg.Limit <= 0 {
		errs = append(errs, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidLimit, cfg.Limit))
	}

	if cfg.QueryCacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: query_cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.QueryCacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	// Zero means auto-size off NumCPU, so only negatives are invalid.
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if cfg.EmbedBatchSize < 0 {
		errs = append(errs, fmt.Errorf("%w: embed_batch_size cannot be negative, got %d", ErrInvalidBatchSize, cfg.EmbedBatchSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	backend := strings.ToLower(cfg.Backend)
	if backend != "json" && backend != "sqlite" {
		return fmt.Errorf("%w: must be 'json' or 'sqlite', got '%s'", ErrInvalidBackend, cfg.Backend)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
