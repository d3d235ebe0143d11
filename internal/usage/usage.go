// Package usage synthesizes one-line call examples for callable entities.
// Synthesis is a pure function of the entity and has no failure mode.
package usage

import (
	"fmt"
	"strings"

	"github.com/lumendocs/lumen/internal/entity"
)

// Example returns the usage line for an entity in its own language idiom,
// with a sequential placeholder per declared parameter. Kinds that are not
// called (classes, tables, views) produce an empty string.
func Example(e *entity.Entity) string {
	if !e.Kind.Callable() {
		return ""
	}

	call := e.Name + "(" + placeholders(len(e.Parameters)) + ")"
	switch e.Language {
	case entity.LangPython:
		if e.Kind == entity.KindMethod {
			return "result = instance." + call
		}
		return "result = " + call
	case entity.LangJavaScript:
		if e.Kind == entity.KindMethod {
			return "const result = instance." + call + ";"
		}
		return "const result = " + call + ";"
	case entity.LangJava:
		if e.ReturnType == "" || e.ReturnType == "void" {
			return "instance." + call + ";"
		}
		return e.ReturnType + " result = instance." + call + ";"
	case entity.LangSQL:
		if e.Kind == entity.KindProcedure {
			return "CALL " + call + ";"
		}
		return "SELECT " + call + ";"
	}
	return ""
}

// Enrich writes the usage example onto every callable entity in the corpus.
func Enrich(corpus *entity.Corpus) {
	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		if example := Example(e); example != "" {
			e.UsageExample = example
		}
	}
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("arg%d", i+1)
	}
	return strings.Join(parts, ", ")
}
