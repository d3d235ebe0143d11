package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumendocs/lumen/internal/diagram"
)

var (
	diagramRoot  string
	diagramOut   string
	diagramLabel string
)

// diagramCmd represents the diagram command
var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Render the catalogue containment diagram as DOT",
	Long: `Diagram emits a Graphviz DOT graph of the catalogue: classes contain
their methods, everything else hangs off the project root.

Examples:
  # DOT to stdout
  lumen diagram

  # Render with Graphviz
  lumen diagram -o catalogue.dot && dot -Tsvg catalogue.dot -o catalogue.svg
`,
	RunE: runDiagram,
}

func init() {
	rootCmd.AddCommand(diagramCmd)
	diagramCmd.Flags().StringVar(&diagramRoot, "root", ".", "Project root holding the .lumen catalogue")
	diagramCmd.Flags().StringVarP(&diagramOut, "output", "o", "", "Output file (default stdout)")
	diagramCmd.Flags().StringVar(&diagramLabel, "label", "", "Root node label (default is the root directory name)")
}

func runDiagram(cmd *cobra.Command, args []string) error {
	corpus, _, err := loadCorpus(diagramRoot)
	if err != nil {
		return err
	}

	label := diagramLabel
	if label == "" {
		abs, err := filepath.Abs(diagramRoot)
		if err != nil {
			return fmt.Errorf("failed to resolve root: %w", err)
		}
		label = filepath.Base(abs)
	}

	var out io.Writer = os.Stdout
	if diagramOut != "" {
		f, err := os.Create(diagramOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := diagram.DOT(out, corpus, label); err != nil {
		return fmt.Errorf("failed to render diagram: %w", err)
	}

	if diagramOut != "" {
		fmt.Fprintf(os.Stderr, "Diagram written to %s\n", diagramOut)
	}
	return nil
}
