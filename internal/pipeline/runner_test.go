package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/ingest"
)

// Test Plan for Runner:
// 1. A mixed-language run produces entities with ids, docs, usage examples,
//    and embeddings, plus a complete report.
// 2. Two runs over identical units yield identical id sequences and vectors.
// 3. A unit that fails to parse is isolated: its error lands on the report,
//    every other unit still contributes entities.
// 4. Embedding failures degrade the run instead of aborting it.
// 5. Context cancellation aborts the run with an error.
// 6. Progress callbacks fire in order with the right totals.

const pythonSource = `def area(radius):
    """Return the circle area."""
    return 3.14 * radius * radius
`

const javascriptSource = `/** Format a display label. */
function label(name) {
  return name.trim();
}
`

const sqlSource = `-- Customer orders.
CREATE TABLE orders (
    id INT NOT NULL,
    total DECIMAL(10, 2)
);
`

const brokenPythonSource = "def broken(:\n    pass\n"

func sampleUnits() []ingest.Unit {
	return []ingest.Unit{
		{Path: "src/geometry.py", Text: pythonSource, Language: entity.LangPython},
		{Path: "web/format.js", Text: javascriptSource, Language: entity.LangJavaScript},
		{Path: "db/schema.sql", Text: sqlSource, Language: entity.LangSQL},
	}
}

// recordingReporter captures progress callbacks for assertions. Extraction
// callbacks arrive from worker goroutines, so it locks.
type recordingReporter struct {
	mu              sync.Mutex
	extractionTotal int
	processed       []string
	embedTotal      int
	embedProgress   []int
	completed       *Report
}

func (r *recordingReporter) OnExtractionStart(totalUnits int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractionTotal = totalUnits
}

func (r *recordingReporter) OnUnitProcessed(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, path)
}

func (r *recordingReporter) OnEmbeddingStart(totalEntities int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedTotal = totalEntities
}

func (r *recordingReporter) OnEmbeddingProgress(processedEntities int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedProgress = append(r.embedProgress, processedEntities)
}

func (r *recordingReporter) OnComplete(report *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = report
}

// failingProvider initializes cleanly but cannot embed.
type failingProvider struct{}

func (failingProvider) Initialize(ctx context.Context) error { return nil }
func (failingProvider) Embed(ctx context.Context, texts []string, mode embed.Mode) ([][]float32, error) {
	return nil, errors.New("backend down")
}
func (failingProvider) Dimensions() int { return 384 }
func (failingProvider) Close() error    { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func mockProvider(t *testing.T) embed.Provider {
	t.Helper()
	provider, err := embed.NewProvider(embed.Config{Provider: "mock"})
	require.NoError(t, err)
	return provider
}

func TestRunnerFullRun(t *testing.T) {
	t.Parallel()

	runner := NewRunner(mockProvider(t), Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err)

	corpus := result.Corpus
	require.Equal(t, 3, corpus.Len())

	report := result.Report
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id should be a uuid")
	assert.Equal(t, 3, report.Units)
	assert.Equal(t, 3, report.Entities)
	assert.Empty(t, report.UnitErrors)
	assert.False(t, report.Degraded)
	assert.Positive(t, report.Timings.Total)

	area := corpus.At(0)
	assert.Equal(t, entity.KindFunction, area.Kind)
	assert.Equal(t, "area", area.Name)
	assert.Equal(t, "src/geometry.py", area.Unit)
	assert.Equal(t, "Return the circle area.", area.Documentation)
	assert.Equal(t, "result = area(arg1)", area.UsageExample)
	assert.NotEmpty(t, area.Embedding, "pipeline should write vectors onto entities")

	label := corpus.At(1)
	assert.Equal(t, "label", label.Name)
	assert.Equal(t, "const result = label(arg1);", label.UsageExample)

	orders := corpus.At(2)
	assert.Equal(t, entity.KindTable, orders.Kind)
	assert.Equal(t, "orders", orders.Name)
	assert.Empty(t, orders.UsageExample)
	assert.NotEmpty(t, orders.Embedding)
}

func TestRunnerDeterministic(t *testing.T) {
	t.Parallel()

	runner := NewRunner(mockProvider(t), Options{Workers: 4}, quietLogger(), nil)

	first, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err)

	require.Equal(t, first.Corpus.Len(), second.Corpus.Len())
	for i := 0; i < first.Corpus.Len(); i++ {
		assert.Equal(t, first.Corpus.At(i).ID, second.Corpus.At(i).ID)
		assert.Equal(t, first.Corpus.At(i).Embedding, second.Corpus.At(i).Embedding)
	}
	assert.NotEqual(t, first.Report.RunID, second.Report.RunID, "every run gets a fresh id")
}

func TestRunnerIsolatesParseFailure(t *testing.T) {
	t.Parallel()

	units := append(sampleUnits(), ingest.Unit{
		Path:     "src/broken.py",
		Text:     brokenPythonSource,
		Language: entity.LangPython,
	})

	runner := NewRunner(mockProvider(t), Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Corpus.Len(), "healthy units still contribute entities")
	require.Len(t, result.Report.UnitErrors, 1)
	unitErr := result.Report.UnitErrors[0]
	assert.Equal(t, "src/broken.py", unitErr.Path)
	assert.Equal(t, StageExtract, unitErr.Stage)
	assert.Contains(t, unitErr.Message, "parse failed")
	assert.False(t, result.Report.Degraded)
}

func TestRunnerUnknownLanguage(t *testing.T) {
	t.Parallel()

	units := []ingest.Unit{{Path: "main.rs", Text: "fn main() {}", Language: entity.Language("rust")}}

	runner := NewRunner(mockProvider(t), Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), units)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Corpus.Len())
	require.Len(t, result.Report.UnitErrors, 1)
	assert.Contains(t, result.Report.UnitErrors[0].Message, "no extractor registered")
}

func TestRunnerDegradesOnEmbedFailure(t *testing.T) {
	t.Parallel()

	runner := NewRunner(failingProvider{}, Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err, "embedding failure must not abort the run")

	assert.True(t, result.Report.Degraded)
	assert.Equal(t, 3, result.Corpus.Len())
	for i := 0; i < result.Corpus.Len(); i++ {
		assert.Empty(t, result.Corpus.At(i).Embedding)
	}
	require.NotEmpty(t, result.Report.Warnings)
	assert.Contains(t, result.Report.Warnings[0], "embedding unavailable")
}

func TestRunnerNilProviderDegrades(t *testing.T) {
	t.Parallel()

	runner := NewRunner(nil, Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err)

	assert.True(t, result.Report.Degraded)
	assert.Equal(t, 3, result.Corpus.Len())
}

func TestRunnerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(mockProvider(t), Options{}, quietLogger(), nil)
	result, err := runner.Run(ctx, sampleUnits())
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRunnerProgressCallbacks(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{}
	runner := NewRunner(mockProvider(t), Options{EmbedBatchSize: 1}, quietLogger(), reporter)

	result, err := runner.Run(context.Background(), sampleUnits())
	require.NoError(t, err)

	assert.Equal(t, 3, reporter.extractionTotal)
	assert.ElementsMatch(t, []string{"src/geometry.py", "web/format.js", "db/schema.sql"}, reporter.processed)
	assert.Equal(t, 3, reporter.embedTotal)
	assert.Equal(t, []int{1, 2, 3}, reporter.embedProgress, "batch size 1 reports after every entity")
	require.NotNil(t, reporter.completed)
	assert.Same(t, result.Report, reporter.completed)
}

func TestRunnerEmptyUnits(t *testing.T) {
	t.Parallel()

	runner := NewRunner(mockProvider(t), Options{}, quietLogger(), nil)
	result, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Corpus.Len())
	assert.Equal(t, 0, result.Report.Units)
	assert.False(t, result.Report.Degraded)
	assert.Empty(t, result.Report.UnitErrors)
}
