package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/pipeline"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS catalog_runs (
    run_id       TEXT PRIMARY KEY,
    version      TEXT NOT NULL,
    generated_at TEXT NOT NULL,
    root         TEXT NOT NULL,
    degraded     INTEGER NOT NULL DEFAULT 0,
    unit_errors  TEXT NOT NULL DEFAULT '[]'
)`

const createEntitiesTable = `
CREATE TABLE IF NOT EXISTS entities (
    run_id        TEXT NOT NULL REFERENCES catalog_runs(run_id) ON DELETE CASCADE,
    seq           INTEGER NOT NULL,
    entity_id     TEXT NOT NULL,
    kind          TEXT NOT NULL,
    name          TEXT NOT NULL,
    language      TEXT NOT NULL,
    unit          TEXT NOT NULL,
    parameters    TEXT NOT NULL DEFAULT '[]',
    return_type   TEXT NOT NULL DEFAULT '',
    documentation TEXT NOT NULL DEFAULT '',
    start_line    INTEGER NOT NULL,
    end_line      INTEGER NOT NULL,
    source_text   TEXT NOT NULL DEFAULT '',
    parent_id     TEXT NOT NULL DEFAULT '',
    usage_example TEXT NOT NULL DEFAULT '',
    visibility    TEXT NOT NULL DEFAULT 'unspecified',
    embedding     BLOB,
    PRIMARY KEY (run_id, seq)
)`

// SQLiteStore persists catalogues in a SQLite database: one catalog_runs row
// per save plus its entities, embeddings serialized as little-endian float32
// BLOBs. Save replaces the previous run, mirroring the JSON backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating catalogue directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	for _, ddl := range []string{createRunsTable, createEntitiesTable} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating catalogue schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Save writes the catalogue in one transaction, replacing any previous run.
func (s *SQLiteStore) Save(catalog *Catalog) error {
	unitErrors, err := json.Marshal(catalog.UnitErrors)
	if err != nil {
		return fmt.Errorf("marshaling unit errors: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Child table first so the wipe does not rely on cascade being enabled
	// on this pooled connection.
	if _, err := sq.Delete("entities").RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("clearing previous entities: %w", err)
	}
	if _, err := sq.Delete("catalog_runs").RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("clearing previous runs: %w", err)
	}

	_, err = sq.Insert("catalog_runs").
		Columns("run_id", "version", "generated_at", "root", "degraded", "unit_errors").
		Values(
			catalog.RunID,
			catalog.Version,
			catalog.GeneratedAt.UTC().Format(time.RFC3339Nano),
			catalog.Root,
			catalog.Degraded,
			string(unitErrors),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", catalog.RunID, err)
	}

	for seq, e := range catalog.Entities {
		parameters, err := json.Marshal(e.Parameters)
		if err != nil {
			return fmt.Errorf("marshaling parameters of %s: %w", e.ID, err)
		}

		_, err = sq.Insert("entities").
			Columns(
				"run_id", "seq", "entity_id", "kind", "name", "language", "unit",
				"parameters", "return_type", "documentation", "start_line", "end_line",
				"source_text", "parent_id", "usage_example", "visibility", "embedding",
			).
			Values(
				catalog.RunID,
				seq,
				e.ID,
				string(e.Kind),
				e.Name,
				string(e.Language),
				e.Unit,
				string(parameters),
				e.ReturnType,
				e.Documentation,
				e.Span.StartLine,
				e.Span.EndLine,
				e.SourceText,
				e.ParentID,
				e.UsageExample,
				string(e.Visibility),
				serializeEmbedding(e.Embedding),
			).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalogue: %w", err)
	}
	return nil
}

// Load reads the stored catalogue, or ErrNotFound when the database holds no
// run.
func (s *SQLiteStore) Load() (*Catalog, error) {
	row := sq.Select("run_id", "version", "generated_at", "root", "degraded", "unit_errors").
		From("catalog_runs").
		OrderBy("generated_at DESC").
		Limit(1).
		RunWith(s.db).
		QueryRow()

	var (
		catalog       Catalog
		generatedAt   string
		unitErrorsRaw string
	)
	err := row.Scan(&catalog.RunID, &catalog.Version, &generatedAt, &catalog.Root, &catalog.Degraded, &unitErrorsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}

	catalog.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(unitErrorsRaw), &catalog.UnitErrors); err != nil {
		return nil, fmt.Errorf("unmarshaling unit errors: %w", err)
	}

	rows, err := sq.Select(
		"entity_id", "kind", "name", "language", "unit",
		"parameters", "return_type", "documentation", "start_line", "end_line",
		"source_text", "parent_id", "usage_example", "visibility", "embedding",
	).
		From("entities").
		Where(sq.Eq{"run_id": catalog.RunID}).
		OrderBy("seq ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("reading entities: %w", err)
	}
	defer rows.Close()

	catalog.Entities = []entity.Entity{}
	for rows.Next() {
		var (
			e             entity.Entity
			parametersRaw string
			embeddingRaw  []byte
		)
		err := rows.Scan(
			&e.ID, &e.Kind, &e.Name, &e.Language, &e.Unit,
			&parametersRaw, &e.ReturnType, &e.Documentation, &e.Span.StartLine, &e.Span.EndLine,
			&e.SourceText, &e.ParentID, &e.UsageExample, &e.Visibility, &embeddingRaw,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}

		if err := json.Unmarshal([]byte(parametersRaw), &e.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshaling parameters of %s: %w", e.ID, err)
		}
		if e.Embedding, err = deserializeEmbedding(embeddingRaw); err != nil {
			return nil, fmt.Errorf("decoding embedding of %s: %w", e.ID, err)
		}
		catalog.Entities = append(catalog.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	if catalog.UnitErrors == nil {
		catalog.UnitErrors = []pipeline.UnitError{}
	}
	return &catalog, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
