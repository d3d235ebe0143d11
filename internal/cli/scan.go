package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/catalog"
	"github.com/lumendocs/lumen/internal/config"
	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/ingest"
	"github.com/lumendocs/lumen/internal/pipeline"
	"github.com/lumendocs/lumen/internal/render"
)

var scanQuiet bool

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree into the documentation catalogue",
	Long: `Scan walks a source tree, extracts every documentable entity
(functions, classes, methods, tables, views, procedures) and writes the
catalogue to .lumen/ under the scanned root.

The scanner:
  - Discovers Python, JavaScript, Java and SQL source files
  - Extracts entities with their signatures and documentation
  - Generates a usage example for each callable entity
  - Embeds every entity for semantic search

Examples:
  # Scan the current directory
  lumen scan

  # Scan a specific directory
  lumen scan ./backend

  # Scan with progress bars disabled
  lumen scan --quiet
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runScan(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling scan...")
		cancel()
	}()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve scan root: %w", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	discovery, err := ingest.NewDiscovery(root, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("failed to prepare discovery: %w", err)
	}
	units, err := discovery.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover source files: %w", err)
	}
	if !scanQuiet {
		fmt.Printf("Discovered %d source files\n", len(units))
	}

	// Create embedding provider
	provider, err := embed.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	if !scanQuiet {
		fmt.Println("Initializing embedding provider...")
	}
	if err := provider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	if !scanQuiet {
		fmt.Println("✓ Embedding provider ready")
	}

	progress := NewCLIProgressReporter(scanQuiet)
	runner := pipeline.NewRunner(provider, pipeline.Options{
		Workers:        cfg.Scan.Workers,
		EmbedBatchSize: cfg.Scan.EmbedBatchSize,
	}, logger, progress)

	result, err := runner.Run(ctx, units)
	if err != nil {
		// Check if it was a cancellation
		if ctx.Err() != nil {
			return fmt.Errorf("scan cancelled")
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	lumenDir := filepath.Join(root, config.DefaultDir)
	store, err := catalog.OpenStore(cfg.Storage.Backend, lumenDir)
	if err != nil {
		return fmt.Errorf("failed to open catalogue store: %w", err)
	}
	defer store.Close()

	if err := store.Save(catalog.FromRun(result, root)); err != nil {
		return fmt.Errorf("failed to save catalogue: %w", err)
	}

	// Failed units go to stderr even in quiet mode.
	if len(result.Report.UnitErrors) > 0 {
		fmt.Fprintf(os.Stderr, "%d unit(s) failed:\n", len(result.Report.UnitErrors))
		for _, ue := range result.Report.UnitErrors {
			fmt.Fprintf(os.Stderr, "  %s [%s]: %s\n", ue.Path, ue.Stage, ue.Message)
		}
	}

	// Print summary (if not quiet, OnComplete already printed it)
	if scanQuiet {
		fmt.Printf("Scan complete: %d entities from %d units in %.2fs\n",
			result.Report.Entities,
			result.Report.Units,
			result.Report.Timings.Total.Seconds())
		return nil
	}

	stats := render.Collect(result.Corpus)
	fmt.Printf("  Documentation coverage: %d/%d entities (%.1f%%)\n",
		stats.Documented, stats.Total, stats.Coverage)
	fmt.Printf("  Estimated reading time saved: %s\n", stats.TimeSaved())
	fmt.Printf("  Catalogue: %s\n", lumenDir)

	return nil
}
