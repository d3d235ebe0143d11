// Package diagram emits the catalogue's containment graph as Graphviz DOT:
// classes point at their methods, everything top-level hangs off a synthetic
// run root.
package diagram

import (
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/lumendocs/lumen/internal/entity"
)

// rootID is the synthetic vertex top-level entities attach to. Entity ids
// are 16 hex characters, so it can never collide.
const rootID = "__root__"

var shapeByKind = map[entity.Kind]string{
	entity.KindClass:       "box",
	entity.KindFunction:    "ellipse",
	entity.KindMethod:      "ellipse",
	entity.KindTable:       "cylinder",
	entity.KindView:        "cylinder",
	entity.KindProcedure:   "hexagon",
	entity.KindSQLFunction: "hexagon",
}

// DOT writes the containment diagram for the corpus. label names the root
// vertex; empty means "catalogue".
func DOT(w io.Writer, corpus *entity.Corpus, label string) error {
	if label == "" {
		label = "catalogue"
	}

	g := graph.New(graph.StringHash, graph.Directed())

	if err := g.AddVertex(rootID,
		graph.VertexAttribute("label", label),
		graph.VertexAttribute("shape", "folder"),
	); err != nil {
		return fmt.Errorf("adding root vertex: %w", err)
	}

	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		shape, ok := shapeByKind[e.Kind]
		if !ok {
			shape = "ellipse"
		}
		if err := g.AddVertex(e.ID,
			graph.VertexAttribute("label", e.Name),
			graph.VertexAttribute("shape", shape),
		); err != nil {
			return fmt.Errorf("adding vertex %s: %w", e.ID, err)
		}
	}

	for i := 0; i < corpus.Len(); i++ {
		e := corpus.At(i)
		parent := rootID
		if e.ParentID != "" {
			if _, ok := corpus.Get(e.ParentID); ok {
				parent = e.ParentID
			}
		}
		if err := g.AddEdge(parent, e.ID); err != nil {
			return fmt.Errorf("adding edge %s -> %s: %w", parent, e.ID, err)
		}
	}

	return draw.DOT(g, w)
}
