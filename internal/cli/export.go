package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/render"
)

var (
	exportRoot   string
	exportFormat string
	exportOut    string
	exportTitle  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalogue as markdown, CSV or HTML",
	Long: `Export renders the scanned catalogue into a documentation artifact.

Formats:
  markdown  reference document grouped by source unit (default)
  csv       flat entity table for spreadsheets
  html      self-contained single-page report

Examples:
  # Markdown to stdout
  lumen export

  # CSV to a file
  lumen export --format csv -o entities.csv

  # HTML report with a custom title
  lumen export --format html --title "Billing Service" -o docs.html
`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportRoot, "root", ".", "Project root holding the .lumen catalogue")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: markdown, csv or html")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "Report title for HTML output (default is the root directory name)")
}

func runExport(cmd *cobra.Command, args []string) error {
	corpus, _, err := loadCorpus(exportRoot)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch strings.ToLower(exportFormat) {
	case "markdown", "md":
		if _, err := io.WriteString(out, render.Markdown(corpus)); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	case "csv":
		doc, err := render.CSV(corpus)
		if err != nil {
			return fmt.Errorf("failed to render CSV: %w", err)
		}
		if _, err := io.WriteString(out, doc); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	case "html":
		title := exportTitle
		if title == "" {
			abs, err := filepath.Abs(exportRoot)
			if err != nil {
				return fmt.Errorf("failed to resolve root: %w", err)
			}
			title = filepath.Base(abs)
		}
		if err := render.HTML(out, corpus, title); err != nil {
			return fmt.Errorf("failed to render HTML: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q, expected markdown, csv or html", exportFormat)
	}

	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Exported %d entities to %s\n", corpus.Len(), exportOut)
	}
	return nil
}
