package mcp

// Implementation Plan:
// 1. Server struct bundling searcher, watcher and the stdio server
// 2. NewServer - loads the catalogue, builds the searcher, registers tools
// 3. Reload - re-reads the catalogue and swaps the search indexes
// 4. Serve - stdio loop with graceful shutdown on SIGTERM/SIGINT
// 5. Clean error handling and logging

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/lumendocs/lumen/internal/catalog"
	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/semantic"
)

const (
	serverName    = "lumen-mcp"
	serverVersion = "1.0.0"
)

// Options configures the MCP server.
type Options struct {
	// Store supplies the catalogue, both at startup and on reload.
	Store catalog.Store

	// WatchDir is the directory watched for catalogue changes. Empty
	// disables hot reload.
	WatchDir string

	// Provider embeds query text.
	Provider embed.Provider

	// Search parameterizes the searcher.
	Search semantic.Config

	Logger *logrus.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	store    catalog.Store
	searcher *semantic.Searcher
	watcher  *CatalogWatcher
	provider embed.Provider
	mcp      *server.MCPServer
	logger   *logrus.Logger
}

// NewServer loads the catalogue, builds the search indexes and registers the
// lumen_search and lumen_describe tools.
func NewServer(ctx context.Context, opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("catalogue store is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	cat, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	corpus, err := cat.Corpus()
	if err != nil {
		return nil, err
	}

	searcher, err := semantic.NewSearcher(ctx, corpus, opts.Provider, opts.Search, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	AddSearchTool(mcpServer, searcher)
	AddDescribeTool(mcpServer, searcher)

	s := &Server{
		store:    opts.Store,
		searcher: searcher,
		provider: opts.Provider,
		mcp:      mcpServer,
		logger:   logger,
	}

	if opts.WatchDir != "" {
		watcher, err := NewCatalogWatcher(s, opts.WatchDir, logger)
		if err != nil {
			searcher.Close()
			return nil, fmt.Errorf("failed to create catalogue watcher: %w", err)
		}
		s.watcher = watcher
	}

	return s, nil
}

// Reload re-reads the catalogue and swaps the search indexes. In-flight
// queries finish against the old ones.
func (s *Server) Reload(ctx context.Context) error {
	cat, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("reloading catalogue: %w", err)
	}
	corpus, err := cat.Corpus()
	if err != nil {
		return err
	}
	if err := s.searcher.Reload(ctx, corpus); err != nil {
		return err
	}

	s.logger.WithField("entities", corpus.Len()).Debug("search indexes rebuilt")
	return nil
}

// Serve starts the MCP server and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Start(ctx)
		defer s.watcher.Stop()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Start MCP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping gracefully")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.searcher != nil {
		s.searcher.Close()
	}
	if s.provider != nil {
		return s.provider.Close()
	}
	return nil
}
