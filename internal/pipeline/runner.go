// Package pipeline orchestrates a catalogue run: parallel extraction over
// source units, sequential normalization, usage enrichment, and batched
// embedding. Per-unit failures are isolated on the run report; only context
// cancellation aborts a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/extract"
	"github.com/lumendocs/lumen/internal/ingest"
	"github.com/lumendocs/lumen/internal/normalize"
	"github.com/lumendocs/lumen/internal/usage"
)

// Options tunes a Runner.
type Options struct {
	// EmbedBatchSize is the number of texts per embedding batch.
	// Zero embeds the whole corpus in one batch.
	EmbedBatchSize int

	// Workers caps parallel extraction goroutines. Zero means NumCPU.
	Workers int
}

// Result pairs the built corpus with its run report.
type Result struct {
	Corpus *entity.Corpus
	Report *Report
}

// Runner drives source units through the extraction pipeline.
type Runner struct {
	provider embed.Provider
	options  Options
	logger   *logrus.Logger
	progress ProgressReporter
}

// NewRunner creates a Runner. provider may be nil, in which case the run
// produces a degraded corpus without embeddings. logger and progress may be
// nil for silent operation.
func NewRunner(provider embed.Provider, options Options, logger *logrus.Logger, progress ProgressReporter) *Runner {
	if logger == nil {
		logger = logrus.New()
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Runner{
		provider: provider,
		options:  options,
		logger:   logger,
		progress: progress,
	}
}

// Run executes the full pipeline over the given units. The returned error is
// non-nil only for context cancellation; extraction and embedding failures
// are recorded on the report instead.
func (r *Runner) Run(ctx context.Context, units []ingest.Unit) (*Result, error) {
	started := time.Now()
	report := &Report{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		Units:      len(units),
		UnitErrors: []UnitError{},
		Warnings:   []string{},
	}

	captures, unitErrors, err := r.extractAll(ctx, units)
	if err != nil {
		return nil, err
	}
	report.Timings.Extract = time.Since(started)

	for _, unitErr := range unitErrors {
		report.UnitErrors = append(report.UnitErrors, unitErr)
		r.logger.WithFields(logrus.Fields{
			"path":  unitErr.Path,
			"stage": unitErr.Stage,
		}).Warn(unitErr.Message)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phaseStart := time.Now()
	corpus, warnings := normalize.Normalize(captures)
	for _, warning := range warnings {
		report.Warnings = append(report.Warnings, warning.String())
		r.logger.Warn(warning.String())
	}
	report.Timings.Normalize = time.Since(phaseStart)

	phaseStart = time.Now()
	usage.Enrich(corpus)
	report.Timings.Enrich = time.Since(phaseStart)

	if corpus.Len() > 0 {
		r.progress.OnEmbeddingStart(corpus.Len())
		phaseStart = time.Now()
		err := r.embedCorpus(ctx, corpus)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			report.Degraded = true
			report.Warnings = append(report.Warnings, fmt.Sprintf("embedding unavailable: %v", err))
			r.logger.WithError(err).Warn("embedding unavailable, search will use exact matching")
		}
		report.Timings.Embed = time.Since(phaseStart)
	}

	report.Entities = corpus.Len()
	report.Timings.Total = time.Since(started)
	r.progress.OnComplete(report)

	return &Result{Corpus: corpus, Report: report}, nil
}

// extractAll runs extractors over the units in parallel. Each goroutine
// writes only its own slot, so slices need no locking. Unit failures come
// back as records, not errors; only cancellation returns an error.
func (r *Runner) extractAll(ctx context.Context, units []ingest.Unit) ([]normalize.UnitCaptures, []UnitError, error) {
	r.progress.OnExtractionStart(len(units))

	captures := make([]normalize.UnitCaptures, len(units))
	failures := make([]*UnitError, len(units))

	workers := r.options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, unit := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			extractor, ok := extract.For(unit.Language)
			if !ok {
				failures[i] = &UnitError{
					Path:    unit.Path,
					Stage:   StageExtract,
					Message: fmt.Sprintf("no extractor registered for language %q", unit.Language),
				}
				return nil
			}

			unitCaptures, err := extractor.Extract(unit.Text)
			if err != nil {
				failures[i] = &UnitError{
					Path:    unit.Path,
					Stage:   StageExtract,
					Message: err.Error(),
				}
				return nil
			}

			captures[i] = normalize.UnitCaptures{
				Path:     unit.Path,
				Language: unit.Language,
				Captures: unitCaptures,
			}
			r.progress.OnUnitProcessed(unit.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	succeeded := make([]normalize.UnitCaptures, 0, len(units))
	var unitErrors []UnitError
	for i := range units {
		if failures[i] != nil {
			unitErrors = append(unitErrors, *failures[i])
			continue
		}
		succeeded = append(succeeded, captures[i])
	}
	return succeeded, unitErrors, nil
}

// embedCorpus batch-embeds every entity's embedding text in passage mode and
// writes the vectors back onto the corpus.
func (r *Runner) embedCorpus(ctx context.Context, corpus *entity.Corpus) error {
	if r.provider == nil {
		return errors.New("no embedding provider configured")
	}
	if err := r.provider.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing embedding provider: %w", err)
	}

	texts := make([]string, corpus.Len())
	for i := 0; i < corpus.Len(); i++ {
		texts[i] = corpus.At(i).EmbeddingText()
	}

	progressCh := make(chan embed.BatchProgress)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progressCh {
			r.progress.OnEmbeddingProgress(update.ProcessedTexts)
		}
	}()

	vectors, err := embed.EmbedWithProgress(ctx, r.provider, texts, embed.ModePassage, r.options.EmbedBatchSize, progressCh)
	close(progressCh)
	<-drained
	if err != nil {
		return err
	}

	for i, vector := range vectors {
		corpus.At(i).Embedding = vector
	}
	return nil
}
