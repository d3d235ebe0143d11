// Package entity defines the canonical record every language extractor
// normalizes into, plus the corpus arena that holds one run's entities.
package entity

import "strings"

// Kind identifies the documentable construct an Entity describes.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindClass       Kind = "class"
	KindTable       Kind = "table"
	KindProcedure   Kind = "procedure"
	KindSQLFunction Kind = "sql_function"
	KindView        Kind = "view"
)

// Callable reports whether entities of this kind are invoked at a call site
// and therefore receive a usage example.
func (k Kind) Callable() bool {
	switch k {
	case KindFunction, KindMethod, KindProcedure, KindSQLFunction:
		return true
	}
	return false
}

// Language tags the source language an entity was extracted from.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangSQL        Language = "sql"
)

// Visibility is the declared access level of an entity.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityProtected   Visibility = "protected"
	VisibilityUnspecified Visibility = "unspecified"
)

// Direction marks how a routine parameter is passed. Only schema-language
// routines carry directions; everything else leaves it empty.
type Direction string

const (
	DirectionIn    Direction = "in"
	DirectionOut   Direction = "out"
	DirectionInOut Direction = "inout"
)

// Param is one declared parameter, in call-site order. Table columns reuse
// the shape: NotNull and Default are only populated for them.
type Param struct {
	Name         string    `json:"name"`
	DeclaredType string    `json:"declared_type,omitempty"`
	Direction    Direction `json:"direction,omitempty"`
	NotNull      bool      `json:"not_null,omitempty"`
	Default      string    `json:"default,omitempty"`
}

// Span is a 1-based, inclusive line range within one source unit.
type Span struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Entity is the unit of documentation. Entities are created once per run by
// an extractor + normalizer pass and are immutable afterwards, except for
// UsageExample and Embedding which the enrichment stages write exactly once.
type Entity struct {
	ID            string     `json:"id"`
	Kind          Kind       `json:"kind"`
	Name          string     `json:"name"`
	Language      Language   `json:"language"`
	Unit          string     `json:"unit"`
	Parameters    []Param    `json:"parameters"`
	ReturnType    string     `json:"return_type,omitempty"`
	Documentation string     `json:"documentation"`
	Span          Span       `json:"source_span"`
	SourceText    string     `json:"source_text"`
	ParentID      string     `json:"parent_id,omitempty"`
	UsageExample  string     `json:"usage_example,omitempty"`
	Visibility    Visibility `json:"visibility"`
	Embedding     []float32  `json:"embedding,omitempty"`
}

// EmbeddingText is the text the semantic index embeds for this entity:
// name, documentation, and parameter names.
func (e *Entity) EmbeddingText() string {
	text := e.Name
	if e.Documentation != "" {
		text += "\n" + e.Documentation
	}
	if len(e.Parameters) > 0 {
		names := make([]string, len(e.Parameters))
		for i, p := range e.Parameters {
			names[i] = p.Name
		}
		text += "\n" + strings.Join(names, " ")
	}
	return text
}
