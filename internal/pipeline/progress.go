package pipeline

// ProgressReporter provides callbacks for reporting scan progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnExtractionStart is called before units are handed to the extractors.
	OnExtractionStart(totalUnits int)

	// OnUnitProcessed is called after each unit finishes extraction.
	OnUnitProcessed(path string)

	// OnEmbeddingStart is called before embedding begins.
	OnEmbeddingStart(totalEntities int)

	// OnEmbeddingProgress is called after each embedding batch.
	OnEmbeddingProgress(processedEntities int)

	// OnComplete is called with the final report when the run finishes.
	OnComplete(report *Report)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g. --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnExtractionStart(totalUnits int)          {}
func (n *NoOpProgressReporter) OnUnitProcessed(path string)               {}
func (n *NoOpProgressReporter) OnEmbeddingStart(totalEntities int)        {}
func (n *NoOpProgressReporter) OnEmbeddingProgress(processedEntities int) {}
func (n *NoOpProgressReporter) OnComplete(report *Report)                 {}
