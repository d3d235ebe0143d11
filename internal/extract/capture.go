package extract

import (
	"fmt"

	"github.com/lumendocs/lumen/internal/entity"
)

// Capture is an extractor's raw, pre-normalization record for one recognized
// construct. The normalizer turns captures into entities.
type Capture struct {
	Kind       entity.Kind
	Name       string
	Parameters []entity.Param
	ReturnType string
	Doc        string
	StartLine  int
	EndLine    int
	SourceText string
	Visibility entity.Visibility

	// Parent is the 1-based position, within the same capture list, of the
	// enclosing class capture. 0 means top-level. It is a structural scope
	// reference the normalizer resolves into a ParentID.
	Parent int
}

// ParseError reports a source unit whose text could not be structurally
// parsed. Only the grammar-based extractor produces it; pattern extractors
// are best-effort and never fail a unit.
type ParseError struct {
	Language entity.Language
	Detail   string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s parse failed", e.Language)
	}
	return fmt.Sprintf("%s parse failed: %s", e.Language, e.Detail)
}
