package storage

import (
	"bytes"
	"errors"
	"fmt"

	dgraph "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/mvp-joe/codenav/internal/graph"
)

// dotFillColors maps node types to Graphviz fill colors.
var dotFillColors = map[graph.NodeType]string{
	graph.NodeFunction:    "lightblue",
	graph.NodeMethod:      "lightgreen",
	graph.NodeHTTPHandler: "yellow",
	graph.NodeMiddleware:  "pink",
}

// ExportDOT renders the graph in Graphviz DOT format. Edge targets that
// resolve through the name index point at the resolved node; unresolved
// names (stdlib and external calls) become standalone box vertices.
func ExportDOT(g *graph.Graph, path string) error {
	d := dgraph.New(dgraph.StringHash, dgraph.Directed())

	for _, n := range g.Nodes {
		label := fmt.Sprintf("%s\\n%s\\n%s:%d", n.Name, n.Type, n.Package, n.Line)
		err := d.AddVertex(n.ID,
			dgraph.VertexAttribute("label", label),
			dgraph.VertexAttribute("shape", "box"),
			dgraph.VertexAttribute("style", "filled"),
			dgraph.VertexAttribute("fillcolor", dotFillColors[n.Type]),
		)
		if err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
			return fmt.Errorf("failed to build DOT graph: %w", err)
		}
	}

	for _, e := range g.Edges {
		targets := g.GetNodesByName(e.To)
		if len(targets) == 0 {
			// External or unparsed target: keep it visible as a bare vertex.
			err := d.AddVertex(e.To,
				dgraph.VertexAttribute("label", e.To),
				dgraph.VertexAttribute("shape", "box"),
				dgraph.VertexAttribute("style", "dashed"),
			)
			if err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
				return fmt.Errorf("failed to build DOT graph: %w", err)
			}
			if err := addDOTEdge(d, e.From, e.To, string(e.Type)); err != nil {
				return err
			}
			continue
		}
		for _, target := range targets {
			if err := addDOTEdge(d, e.From, target.ID, string(e.Type)); err != nil {
				return err
			}
		}
	}

	var buf bytes.Buffer
	if err := draw.DOT(d, &buf); err != nil {
		return fmt.Errorf("failed to render DOT graph: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

func addDOTEdge(d dgraph.Graph[string, string], from, to, label string) error {
	err := d.AddEdge(from, to, dgraph.EdgeAttribute("label", label))
	if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
		return fmt.Errorf("failed to build DOT graph: %w", err)
	}
	return nil
}
