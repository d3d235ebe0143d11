package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/lumendocs/lumen/internal/pipeline"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet               bool
	unitBar             *progressbar.ProgressBar
	embeddingBar        *progressbar.ProgressBar
	totalUnits          int
	processedUnits      int
	totalEmbeddings     int
	processedEmbeddings int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnExtractionStart(totalUnits int) {
	if c.quiet {
		return
	}
	c.totalUnits = totalUnits
	c.processedUnits = 0

	c.unitBar = progressbar.NewOptions(totalUnits,
		progressbar.OptionSetDescription("Extracting entities"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnUnitProcessed(path string) {
	if c.quiet {
		return
	}
	if c.unitBar != nil {
		c.processedUnits++
		c.unitBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnEmbeddingStart(totalEntities int) {
	if c.quiet {
		return
	}
	c.totalEmbeddings = totalEntities
	c.processedEmbeddings = 0

	c.embeddingBar = progressbar.NewOptions(totalEntities,
		progressbar.OptionSetDescription("Generating embeddings"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("emb/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnEmbeddingProgress(processedEntities int) {
	if c.quiet {
		return
	}
	if c.embeddingBar != nil {
		delta := processedEntities - c.processedEmbeddings
		if delta > 0 {
			c.embeddingBar.Add(delta)
			c.processedEmbeddings = processedEntities
		}
	}
}

func (c *CLIProgressReporter) OnComplete(report *pipeline.Report) {
	if c.quiet {
		return
	}

	fmt.Println()
	fmt.Printf("✓ Scan complete: %s entities from %s units in %.1fs\n",
		formatNumber(report.Entities),
		formatNumber(report.Units),
		report.Timings.Total.Seconds())
	if len(report.UnitErrors) > 0 {
		fmt.Printf("  Failed units: %d\n", len(report.UnitErrors))
	}
	if report.Degraded {
		fmt.Println("  Embeddings unavailable: search will fall back to exact matching")
	}
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Simple implementation for thousands/millions
	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
