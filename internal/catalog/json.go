package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const catalogFileName = "catalog.json"

// JSONStore persists the catalogue as a single indented JSON file, written
// atomically via a temp file and rename so readers never observe a partial
// catalogue.
type JSONStore struct {
	dir string
}

// NewJSONStore returns a store writing to dir/catalog.json. The directory is
// created on first save.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{dir: dir}
}

// Path returns the catalogue file location, for watchers and log messages.
func (s *JSONStore) Path() string {
	return filepath.Join(s.dir, catalogFileName)
}

// Save writes the catalogue atomically, replacing any previous one.
func (s *JSONStore) Save(catalog *Catalog) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating catalogue directory: %w", err)
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling catalogue: %w", err)
	}

	tempPath := s.Path() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp catalogue: %w", err)
	}

	if err := os.Rename(tempPath, s.Path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp catalogue: %w", err)
	}
	return nil
}

// Load reads the current catalogue, or ErrNotFound when none exists.
func (s *JSONStore) Load() (*Catalog, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading catalogue: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshaling catalogue: %w", err)
	}
	return &catalog, nil
}

// Close implements Store; the JSON backend holds no resources.
func (s *JSONStore) Close() error { return nil }
