// Package normalize turns raw extractor captures into canonical entities
// with stable identifiers and resolved parent links.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/lumendocs/lumen/internal/entity"
	"github.com/lumendocs/lumen/internal/extract"
)

// UnitCaptures pairs one source unit with the captures extracted from it.
type UnitCaptures struct {
	Path     string
	Language entity.Language
	Captures []extract.Capture
}

// Warning records a capture that was dropped instead of being propagated
// as a malformed entity.
type Warning struct {
	Unit   string
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Unit, w.Line, w.Reason)
}

// ID derives the stable identifier of an entity from its unit path,
// declared name, and start line. Two runs over unchanged input produce
// identical identifiers.
func ID(path, name string, startLine int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", path, name, startLine)))
	return hex.EncodeToString(sum[:])[:16]
}

// Normalize builds the corpus in source-unit-then-declaration order. It
// fails closed: a capture without a name is dropped with a warning, and a
// child whose parent capture was dropped keeps an empty parent link.
func Normalize(units []UnitCaptures) (*entity.Corpus, []Warning) {
	corpus := entity.NewCorpus()
	var warnings []Warning

	for _, unit := range units {
		// capture position (1-based) to assigned id, for parent links
		ids := make(map[int]string, len(unit.Captures))

		for ci, c := range unit.Captures {
			if c.Name == "" {
				warnings = append(warnings, Warning{
					Unit:   unit.Path,
					Line:   c.StartLine,
					Reason: fmt.Sprintf("dropped nameless %s capture", c.Kind),
				})
				continue
			}

			vis := c.Visibility
			if vis == "" {
				vis = entity.VisibilityUnspecified
			}

			id := ID(unit.Path, c.Name, c.StartLine)
			if _, taken := corpus.Get(id); taken {
				base := id
				for n := 2; ; n++ {
					id = fmt.Sprintf("%s-%d", base, n)
					if _, exists := corpus.Get(id); !exists {
						break
					}
				}
				warnings = append(warnings, Warning{
					Unit:   unit.Path,
					Line:   c.StartLine,
					Reason: fmt.Sprintf("id collision for %s %q, assigned %s", c.Kind, c.Name, id),
				})
			}

			e := entity.Entity{
				ID:            id,
				Kind:          c.Kind,
				Name:          c.Name,
				Language:      unit.Language,
				Unit:          unit.Path,
				Parameters:    c.Parameters,
				ReturnType:    c.ReturnType,
				Documentation: c.Doc,
				Span:          entity.Span{StartLine: c.StartLine, EndLine: c.EndLine},
				SourceText:    c.SourceText,
				Visibility:    vis,
			}
			if err := corpus.Add(e); err != nil {
				warnings = append(warnings, Warning{
					Unit:   unit.Path,
					Line:   c.StartLine,
					Reason: fmt.Sprintf("dropped %s %q: %v", c.Kind, c.Name, err),
				})
				continue
			}
			ids[ci+1] = e.ID
		}

		for ci, c := range unit.Captures {
			if c.Parent <= 0 {
				continue
			}
			childID, ok := ids[ci+1]
			if !ok {
				continue
			}
			parentID, ok := ids[c.Parent]
			if !ok {
				// parent capture was dropped; the link stays empty
				continue
			}
			child, _ := corpus.Get(childID)
			child.ParentID = parentID
		}
	}

	return corpus, warnings
}
