// Package catalog persists scan results so search and export surfaces can
// run without re-extracting the tree. Two backends share one interface: an
// atomically written JSON file and a SQLite database.
package catalog

import (
	"fmt"
	"time"

	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/pipeline"
)

// FormatVersion identifies the catalogue layout. Bump on breaking changes.
const FormatVersion = "1.0.0"

// Catalog is one complete scan result: every entity extracted from a source
// tree plus the run metadata needed to reload and search it later.
// Embeddings are persisted per entity, so loading a catalogue needs the
// embedding provider only for query-time vectors.
type Catalog struct {
	Version     string               `json:"version"`
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Root        string               `json:"root"`
	Degraded    bool                 `json:"degraded"`
	Entities    []entity.Entity      `json:"entities"`
	UnitErrors  []pipeline.UnitError `json:"unit_errors"`
}

// FromRun captures a finished pipeline run as a persistable catalogue.
func FromRun(result *pipeline.Result, root string) *Catalog {
	return &Catalog{
		Version:     FormatVersion,
		RunID:       result.Report.RunID,
		GeneratedAt: time.Now().UTC(),
		Root:        root,
		Degraded:    result.Report.Degraded,
		Entities:    result.Corpus.Entities(),
		UnitErrors:  result.Report.UnitErrors,
	}
}

// Corpus rebuilds the entity corpus in catalogue order. It fails on
// duplicate ids, which indicate a corrupted catalogue.
func (c *Catalog) Corpus() (*entity.Corpus, error) {
	corpus := entity.NewCorpus()
	for _, e := range c.Entities {
		if err := corpus.Add(e); err != nil {
			return nil, fmt.Errorf("catalogue entity %s: %w", e.ID, err)
		}
	}
	return corpus, nil
}
