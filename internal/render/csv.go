package render

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

var csvHeader = []string{
	"id", "name", "kind", "language", "unit", "parameters", "return_type",
	"start_line", "end_line", "visibility", "documentation", "usage_example",
}

// CSV renders the corpus as CSV with a fixed header row, one record per
// entity in catalogue order. Parameter names are joined with ", ".
func CSV(corpus *entity.Corpus) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		record := []string{
			e.ID,
			e.Name,
			string(e.Kind),
			string(e.Language),
			e.Unit,
			strings.Join(paramNames(e), ", "),
			e.ReturnType,
			strconv.Itoa(e.Span.StartLine),
			strconv.Itoa(e.Span.EndLine),
			string(e.Visibility),
			e.Documentation,
			e.UsageExample,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
