// Package cli implements the lumen command tree.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/catalog"
	"github.com/lumendocs/lumen/internal/config"
	"github.com/lumendocs/lumen/internal/entity"
)

var (
	cfgFile string
	verbose bool

	logger = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Lumen - code documentation extraction and search",
	Long: `Lumen scans Python, JavaScript, Java and SQL sources, extracts every
documentable entity into a catalogue, and serves the catalogue back as
exports, diagrams and semantic search.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.lumen/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initLogging routes diagnostics to stderr so stdout stays clean for
// exports and MCP stdio traffic.
func initLogging() {
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
}

// loadConfig resolves configuration for a command rooted at root: the
// --config file when given, otherwise <root>/.lumen/config.yml with
// defaults when absent.
func loadConfig(root string) (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadConfigFromFile(cfgFile)
	}
	return config.LoadConfigFromDir(root)
}

// loadCorpus opens the catalogue under root and materializes its corpus for
// the read-side commands (search, export, diagram).
func loadCorpus(root string) (*entity.Corpus, *config.Config, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := catalog.OpenStore(cfg.Storage.Backend, filepath.Join(root, config.DefaultDir))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalogue store: %w", err)
	}
	defer store.Close()

	cat, err := store.Load()
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil, fmt.Errorf("no catalogue under %s, run 'lumen scan' first", root)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	corpus, err := cat.Corpus()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	return corpus, cfg, nil
}
