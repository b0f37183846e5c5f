package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/codenav/internal/graph"
)

// nodeText extracts the source text covered by a tree-sitter node.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

// lineOf converts tree-sitter's zero-based row to a 1-based line number.
func lineOf(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLineOf(n *sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

// signatureOf is the first source line of a declaration.
func signatureOf(n *sitter.Node, source []byte) string {
	text := nodeText(n, source)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// nodeID builds the canonical "<file>:<name>:<line>" node identifier.
func nodeID(filePath, name string, line int) string {
	return fmt.Sprintf("%s:%s:%d", filePath, name, line)
}

// callSpec names the grammar kinds that make up a call site in one language:
// the call node itself, the member-access wrapper for obj.method() calls, and
// the field kind that carries the method name inside that wrapper.
type callSpec struct {
	callKind    string
	memberKind  string
	memberField string
}

// collectCalls walks a declaration body and records one calls edge per call
// site. The edge target is the called NAME, not a node ID; resolution happens
// at query time. Edges are only recorded when the enclosing declaration was
// itself extracted, so call sites in skipped constructs leave no dangling
// sources.
func collectCalls(n *sitter.Node, source []byte, filePath, fromID string, spec callSpec, g *graph.Graph) {
	if n.Kind() == spec.callKind {
		var called string
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(uint(i))
			switch child.Kind() {
			case "identifier":
				called = nodeText(child, source)
			case spec.memberKind:
				// The last matching field is the method name; earlier ones
				// belong to the receiver chain.
				for j := 0; j < int(child.ChildCount()); j++ {
					member := child.Child(uint(j))
					if member.Kind() == spec.memberField {
						called = nodeText(member, source)
					}
				}
			}
		}

		if called != "" && g.GetNodeByID(fromID) != nil {
			g.AddEdge(graph.Edge{
				From:     fromID,
				To:       called,
				Type:     graph.EdgeCalls,
				CallSite: nodeText(n, source),
				FilePath: filePath,
				Line:     lineOf(n),
			})
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		collectCalls(n.Child(uint(i)), source, filePath, fromID, spec, g)
	}
}
