package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Backend names accepted by OpenStore.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// ErrNotFound is returned by Load when no catalogue has been saved yet.
var ErrNotFound = errors.New("no catalogue found")

// Store persists catalogues. Save replaces the previous catalogue; Load
// returns the most recent one or ErrNotFound.
type Store interface {
	Save(catalog *Catalog) error
	Load() (*Catalog, error)
	Close() error
}

// OpenStore opens the configured backend inside dir, the project's config
// directory. An empty backend selects JSON.
func OpenStore(backend, dir string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONStore(dir), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, "catalog.db"))
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: json, sqlite)", backend)
	}
}
