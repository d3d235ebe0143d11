package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/catalog"
	"github.com/lumendocs/lumen/internal/config"
	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/mcp"
)

var mcpRoot string

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for catalogue search",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants search and describe the scanned catalogue.

The MCP server:
- Loads the catalogue from .lumen/ under the project root
- Provides search via the lumen_search tool
- Provides entity lookup via the lumen_describe tool
- Reloads automatically when the catalogue is rescanned
- Communicates via stdio (standard MCP transport)

Example:
  lumen mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpRoot, "root", ".", "Project root holding the .lumen catalogue")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(mcpRoot)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	lumenDir := filepath.Join(mcpRoot, config.DefaultDir)
	store, err := catalog.OpenStore(cfg.Storage.Backend, lumenDir)
	if err != nil {
		return fmt.Errorf("failed to open catalogue store: %w", err)
	}
	defer store.Close()

	// Create embedding provider
	provider, err := embed.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()

	if err := provider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	// Stdout carries the MCP stream, so startup information goes to stderr.
	fmt.Fprintf(os.Stderr, "Lumen MCP Server\n")
	fmt.Fprintf(os.Stderr, "Catalogue: %s\n", lumenDir)
	fmt.Fprintf(os.Stderr, "\n")

	server, err := mcp.NewServer(ctx, mcp.Options{
		Store:    store,
		WatchDir: lumenDir,
		Provider: provider,
		Search:   cfg.SearcherConfig(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
