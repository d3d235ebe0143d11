// Package render turns a finished corpus into export formats: markdown, CSV,
// an interactive HTML report, and the summary statistics block shown after a
// scan.
package render

import (
	"fmt"

	"github.com/lumendocs/lumen/internal/entity"
)

// minutesPerKind estimates how long a reader needs to understand one
// undocumented entity of each kind by reading the source instead.
var minutesPerKind = map[entity.Kind]int{
	entity.KindFunction:    10,
	entity.KindMethod:      10,
	entity.KindClass:       18,
	entity.KindTable:       7,
	entity.KindView:        8,
	entity.KindProcedure:   12,
	entity.KindSQLFunction: 10,
}

const defaultMinutes = 8

// Stats summarizes a corpus for report headers and the scan summary.
type Stats struct {
	Total        int
	Documented   int
	Coverage     float64 // percent of entities carrying documentation
	ByKind       map[entity.Kind]int
	ByLanguage   map[entity.Language]int
	MinutesSaved int
}

// Collect computes catalogue statistics in one pass over the corpus.
func Collect(corpus *entity.Corpus) Stats {
	stats := Stats{
		ByKind:     make(map[entity.Kind]int),
		ByLanguage: make(map[entity.Language]int),
	}
	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		stats.Total++
		stats.ByKind[e.Kind]++
		stats.ByLanguage[e.Language]++
		if e.Documentation != "" {
			stats.Documented++
		}
		minutes, ok := minutesPerKind[e.Kind]
		if !ok {
			minutes = defaultMinutes
		}
		stats.MinutesSaved += minutes
	}
	if stats.Total > 0 {
		stats.Coverage = float64(stats.Documented) / float64(stats.Total) * 100
	}
	return stats
}

// TimeSaved formats the reading-time estimate, "3h 25m" past the first hour
// and "45 minutes" below it.
func (s Stats) TimeSaved() string {
	hours := s.MinutesSaved / 60
	minutes := s.MinutesSaved % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%d minutes", minutes)
}
