package pipeline

import "time"

// Stages a unit can fail in. Pattern extractors skip unrecognized constructs
// instead of failing, so in practice only the structural parser and the
// embedding phase produce errors.
const (
	StageExtract = "extract"
	StageEmbed   = "embed"
)

// UnitError records one isolated per-unit failure. The unit contributes no
// entities; the rest of the run proceeds.
type UnitError struct {
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Timings breaks a run down by phase.
type Timings struct {
	Extract   time.Duration `json:"extract"`
	Normalize time.Duration `json:"normalize"`
	Enrich    time.Duration `json:"enrich"`
	Embed     time.Duration `json:"embed"`
	Total     time.Duration `json:"total"`
}

// Report summarizes one pipeline run. Degraded means the corpus was built
// without embeddings and search falls back to exact matching.
type Report struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	Units      int         `json:"units"`
	Entities   int         `json:"entities"`
	UnitErrors []UnitError `json:"unit_errors"`
	Warnings   []string    `json:"warnings"`
	Degraded   bool        `json:"degraded"`
	Timings    Timings     `json:"timings"`
}
