// Package ingest discovers source files under a scan root and routes them to
// extraction languages. It is the only part of the system that touches the
// source tree; everything downstream consumes Units.
package ingest

import "github.com/lumendocs/lumen/internal/entity"

// Unit is one source file handed to the pipeline. Path is relative to the
// scan root and slash-separated regardless of platform.
type Unit struct {
	Path     string
	Text     string
	Language entity.Language
}
