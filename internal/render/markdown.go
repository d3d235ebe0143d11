package render

import (
	"fmt"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// Markdown renders the corpus as one markdown document, a section per entity
// in catalogue order.
func Markdown(corpus *entity.Corpus) string {
	var b strings.Builder
	b.WriteString("# Code Documentation\n\n")

	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		fmt.Fprintf(&b, "## %s\n\n", e.Name)
		fmt.Fprintf(&b, "**Kind:** %s\n\n", e.Kind)
		fmt.Fprintf(&b, "**Language:** %s\n\n", e.Language)
		fmt.Fprintf(&b, "**Defined in:** %s (lines %d-%d)\n\n", e.Unit, e.Span.StartLine, e.Span.EndLine)

		if names := paramNames(e); len(names) > 0 {
			fmt.Fprintf(&b, "**Parameters:** %s\n\n", strings.Join(names, ", "))
		} else {
			b.WriteString("**Parameters:** None\n\n")
		}
		if e.ReturnType != "" {
			fmt.Fprintf(&b, "**Returns:** %s\n\n", e.ReturnType)
		}

		fmt.Fprintf(&b, "**Documentation:**\n\n%s\n\n", e.Documentation)

		if e.UsageExample != "" {
			fmt.Fprintf(&b, "**Usage:**\n\n```%s\n%s\n```\n\n", e.Language, e.UsageExample)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

func paramNames(e *entity.Entity) []string {
	if len(e.Parameters) == 0 {
		return nil
	}
	names := make([]string, len(e.Parameters))
	for i, p := range e.Parameters {
		names[i] = p.Name
	}
	return names
}
