// Package extract turns one source unit's text into raw captures. Four
// extractors share a single contract: a grammar-based one for Python and
// pattern-based ones for JavaScript, Java, and SQL, selected by language tag.
package extract

import (
	"sort"

	"github.com/lumendocs/lumen/internal/entity"
)

// Extractor recognizes documentable constructs in one source unit.
// Implementations read only the text they are given and keep no state
// between calls, so one extractor may serve concurrent units.
type Extractor interface {
	// Language returns the tag this extractor is registered under.
	Language() entity.Language

	// Extract scans src and returns the recognized captures in declaration
	// order. A non-nil error means the whole unit failed (ParseError);
	// pattern extractors skip unrecognized constructs instead of failing.
	Extract(src string) ([]Capture, error)
}

var registry = map[entity.Language]Extractor{
	entity.LangPython:     pythonExtractor{},
	entity.LangJavaScript: javascriptExtractor{},
	entity.LangJava:       javaExtractor{},
	entity.LangSQL:        sqlExtractor{},
}

// For returns the extractor registered for the given language tag.
func For(lang entity.Language) (Extractor, bool) {
	ex, ok := registry[lang]
	return ex, ok
}

// Languages returns the supported language tags in sorted order.
func Languages() []entity.Language {
	langs := make([]entity.Language, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
