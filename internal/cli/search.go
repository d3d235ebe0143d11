package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/embed"
	"github.com/lumendocs/lumen/internal/semantic"
)

var (
	searchRoot      string
	searchLimit     int
	searchKind      string
	searchLanguage  string
	searchExact     bool
	searchJSON      bool
	searchThreshold float64
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalogue with natural language",
	Long: `Search answers a natural-language query against the scanned catalogue.
Results are ranked by embedding similarity; --exact switches to
substring matching over entity names and documentation.

Examples:
  # Semantic search
  lumen search "how do I create a user"

  # Filter to SQL tables
  lumen search "orders" --kind table

  # Exact substring matching
  lumen search create_user --exact
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchRoot, "root", ".", "Project root holding the .lumen catalogue")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum results (default from config)")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Filter by entity kind (function, class, method, table, view, procedure)")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "Filter by source language (python, javascript, java, sql)")
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "Substring matching instead of semantic search")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "Minimum similarity for a hit, 0-1 (default from config)")
}

// searchHit is the JSON projection of one result. Embeddings stay out of
// command output.
type searchHit struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Language      string  `json:"language"`
	Unit          string  `json:"unit"`
	Line          int     `json:"line"`
	Score         float64 `json:"score"`
	Documentation string  `json:"documentation,omitempty"`
	Degraded      bool    `json:"degraded,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	corpus, cfg, err := loadCorpus(searchRoot)
	if err != nil {
		return err
	}
	if searchThreshold > 0 {
		cfg.Search.Threshold = searchThreshold
	}

	provider, err := embed.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	defer provider.Close()
	if err := provider.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	searcher, err := semantic.NewSearcher(ctx, corpus, provider, cfg.SearcherConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to build search indexes: %w", err)
	}
	defer searcher.Close()

	if searcher.Degraded() && !searchExact {
		fmt.Fprintln(os.Stderr, "warning: catalogue has no embeddings, falling back to exact matching")
	}

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	results, err := searcher.Search(ctx, query, &semantic.Options{
		Limit:    limit,
		Kind:     searchKind,
		Language: searchLanguage,
		Exact:    searchExact,
	})
	if errors.Is(err, semantic.ErrNoMatch) {
		if searchJSON {
			fmt.Println("[]")
			return nil
		}
		fmt.Println("No matches.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		hits := make([]searchHit, 0, len(results))
		for _, r := range results {
			hits = append(hits, searchHit{
				ID:            r.Entity.ID,
				Name:          r.Entity.Name,
				Kind:          string(r.Entity.Kind),
				Language:      string(r.Entity.Language),
				Unit:          r.Entity.Unit,
				Line:          r.Entity.Span.StartLine,
				Score:         r.Score,
				Documentation: r.Entity.Documentation,
				Degraded:      r.Degraded,
			})
		}
		out, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s  (%s, %s)  score %.2f\n",
			i+1, r.Entity.Name, r.Entity.Kind, r.Entity.Language, r.Score)
		fmt.Printf("   %s:%d\n", r.Entity.Unit, r.Entity.Span.StartLine)
		if doc := firstLine(r.Entity.Documentation); doc != "" {
			fmt.Printf("   %s\n", doc)
		}
	}
	return nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
