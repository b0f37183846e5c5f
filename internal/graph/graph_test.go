package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(id, name string, nodeType NodeType, file string, line, endLine int) Node {
	return Node{
		ID:        id,
		Name:      name,
		Type:      nodeType,
		FilePath:  file,
		Line:      line,
		EndLine:   endLine,
		Package:   "main",
		Signature: fmt.Sprintf("func %s() {}", name),
	}
}

func testEdge(from, to, file string, line int) Edge {
	return Edge{
		From:     from,
		To:       to,
		Type:     EdgeCalls,
		CallSite: to + "()",
		FilePath: file,
		Line:     line,
	}
}

// callChainGraph builds funcA -> funcB -> funcC -> funcD in test.go.
func callChainGraph() *Graph {
	g := New("test", "go")

	g.AddNode(testNode("test:a:1", "funcA", NodeFunction, "test.go", 1, 5))
	g.AddNode(testNode("test:b:10", "funcB", NodeFunction, "test.go", 10, 15))
	g.AddNode(testNode("test:c:20", "funcC", NodeFunction, "test.go", 20, 25))
	g.AddNode(testNode("test:d:30", "funcD", NodeFunction, "test.go", 30, 35))

	g.AddEdge(testEdge("test:a:1", "funcB", "test.go", 3))
	g.AddEdge(testEdge("test:b:10", "funcC", "test.go", 12))
	g.AddEdge(testEdge("test:c:20", "funcD", "test.go", 22))

	return g
}

func TestGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("test:f:1", "TestFunc", NodeFunction, "test.go", 1, 5))

	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, 1, g.Metadata.Stats.TotalNodes)

	node := g.GetNodeByID("test:f:1")
	require.NotNil(t, node)
	assert.Equal(t, "TestFunc", node.Name)
}

func TestGraph_AddEdge(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("test:a:1", "funcA", NodeFunction, "test.go", 1, 5))
	g.AddEdge(testEdge("test:a:1", "funcB", "test.go", 3))

	assert.Len(t, g.Edges, 1)
	assert.Equal(t, 1, g.Metadata.Stats.TotalEdges)

	outgoing := g.GetOutgoingEdges("test:a:1")
	require.Len(t, outgoing, 1)
	assert.Equal(t, "funcB", outgoing[0].To)
}

func TestGraph_LookupAccessors(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("test:f:1", "TestFunc", NodeFunction, "test.go", 1, 5))
	g.AddNode(testNode("test:m:10", "TestMethod", NodeMethod, "test.go", 10, 15))

	t.Run("by id", func(t *testing.T) {
		assert.NotNil(t, g.GetNodeByID("test:f:1"))
		assert.Nil(t, g.GetNodeByID("missing"))
	})

	t.Run("by name", func(t *testing.T) {
		nodes := g.GetNodesByName("TestFunc")
		require.Len(t, nodes, 1)
		assert.Equal(t, "test:f:1", nodes[0].ID)
		assert.Empty(t, g.GetNodesByName("missing"))
	})

	t.Run("by type", func(t *testing.T) {
		functions := g.GetNodesByType(NodeFunction)
		require.Len(t, functions, 1)
		assert.Equal(t, "TestFunc", functions[0].Name)

		methods := g.GetNodesByType(NodeMethod)
		require.Len(t, methods, 1)
		assert.Equal(t, "TestMethod", methods[0].Name)
	})
}

func TestGraph_MultipleNodesSameName(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("file1:helper:1", "helper", NodeFunction, "file1.go", 1, 5))
	g.AddNode(testNode("file2:helper:1", "helper", NodeFunction, "file2.go", 1, 5))

	helpers := g.GetNodesByName("helper")
	assert.Len(t, helpers, 2)
}

func TestGraph_Merge(t *testing.T) {
	t.Parallel()

	g1 := New("test", "go")
	g2 := New("test", "go")

	g1.AddNode(testNode("test:a:1", "funcA", NodeFunction, "a.go", 1, 5))
	g1.AddEdge(testEdge("test:a:1", "funcB", "a.go", 3))
	g2.AddNode(testNode("test:b:10", "funcB", NodeFunction, "b.go", 10, 15))
	g2.AddEdge(testEdge("test:b:10", "funcC", "b.go", 12))
	g2.TrackFileMetadata("b.go", "mod-1")

	g1.Merge(g2)

	assert.Len(t, g1.Nodes, 2)
	assert.Len(t, g1.Edges, 2)
	assert.Equal(t, 2, g1.Metadata.Stats.TotalNodes)
	assert.Equal(t, 2, g1.Metadata.Stats.TotalEdges)
	assert.NotNil(t, g1.GetNodeByID("test:a:1"))
	assert.NotNil(t, g1.GetNodeByID("test:b:10"))
	assert.Contains(t, g1.Metadata.FileMetadata, "b.go")

	// Merged positions must be offset, not rebuilt: index lookups resolve
	// to the merged-in entries.
	nodes := g1.GetNodesByName("funcB")
	require.Len(t, nodes, 1)
	assert.Equal(t, "test:b:10", nodes[0].ID)
	require.Len(t, g1.GetOutgoingEdges("test:b:10"), 1)
}

func TestGraph_MergeOrderIndependent(t *testing.T) {
	t.Parallel()

	build := func(order [2]int) *Graph {
		partials := [2]*Graph{New("test", "go"), New("test", "go")}
		partials[0].AddNode(testNode("p1:a:1", "funcA", NodeFunction, "p1.go", 1, 5))
		partials[0].AddEdge(testEdge("p1:a:1", "funcB", "p1.go", 3))
		partials[1].AddNode(testNode("p2:b:1", "funcB", NodeFunction, "p2.go", 1, 5))
		partials[1].AddEdge(testEdge("p2:b:1", "funcA", "p2.go", 3))

		base := New("test", "go")
		base.Merge(partials[order[0]])
		base.Merge(partials[order[1]])
		return base
	}

	g12 := build([2]int{0, 1})
	g21 := build([2]int{1, 0})

	ids := func(g *Graph) map[string]bool {
		set := make(map[string]bool)
		for _, n := range g.Nodes {
			set[n.ID] = true
		}
		return set
	}
	assert.Equal(t, ids(g12), ids(g21))
	assert.Equal(t, len(g12.Edges), len(g21.Edges))

	// Index contents agree regardless of merge order.
	for _, id := range []string{"p1:a:1", "p2:b:1"} {
		assert.Equal(t, len(g12.GetOutgoingEdges(id)), len(g21.GetOutgoingEdges(id)), id)
	}
	for _, name := range []string{"funcA", "funcB"} {
		assert.Equal(t, len(g12.GetNodesByName(name)), len(g21.GetNodesByName(name)), name)
		assert.Equal(t, len(g12.FindCallers(name)), len(g21.FindCallers(name)), name)
	}
}

func TestGraph_BuildIndexes(t *testing.T) {
	t.Parallel()

	g := callChainGraph()

	// Clobber the indices, then rebuild.
	g.MarkIndicesDirty()
	g.EnsureIndices()

	assert.NotNil(t, g.GetNodeByID("test:a:1"))
	assert.Len(t, g.GetOutgoingEdges("test:b:10"), 1)
	assert.Len(t, g.FindCallers("funcB"), 1)
}

func TestGraph_RemoveNodesFromFile(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("a.go:funcA:1", "funcA", NodeFunction, "a.go", 1, 5))
	g.AddNode(testNode("b.go:funcB:1", "funcB", NodeFunction, "b.go", 1, 5))
	g.AddEdge(testEdge("a.go:funcA:1", "funcB", "a.go", 3))
	g.AddEdge(testEdge("b.go:funcB:1", "funcA", "b.go", 3))
	g.TrackFileMetadata("a.go", "mod-1")
	g.TrackFileMetadata("b.go", "mod-1")

	g.RemoveNodesFromFile("a.go")

	assert.Len(t, g.Nodes, 1)
	assert.Len(t, g.Edges, 1)
	assert.Nil(t, g.GetNodeByID("a.go:funcA:1"))
	assert.NotNil(t, g.GetNodeByID("b.go:funcB:1"))
	assert.NotContains(t, g.Metadata.FileMetadata, "a.go")
	assert.Contains(t, g.Metadata.FileMetadata, "b.go")

	// Indices were rebuilt: the surviving edge is still reachable.
	outgoing := g.GetOutgoingEdges("b.go:funcB:1")
	require.Len(t, outgoing, 1)
	assert.Equal(t, "funcA", outgoing[0].To)
	assert.Equal(t, 1, g.Metadata.Stats.TotalNodes)
	assert.Equal(t, 1, g.Metadata.Stats.TotalEdges)
}

func TestGraph_TrackFileMetadata(t *testing.T) {
	t.Parallel()

	g := New("test", "go")
	g.AddNode(testNode("a.go:funcA:1", "funcA", NodeFunction, "a.go", 1, 5))
	g.AddNode(testNode("a.go:funcB:10", "funcB", NodeFunction, "a.go", 10, 15))
	g.AddNode(testNode("b.go:funcC:1", "funcC", NodeFunction, "b.go", 1, 5))

	g.TrackFileMetadata("a.go", "2026-01-01T00:00:00Z")

	fm, ok := g.Metadata.FileMetadata["a.go"]
	require.True(t, ok)
	assert.Equal(t, "2026-01-01T00:00:00Z", fm.LastModified)
	assert.ElementsMatch(t, []string{"a.go:funcA:1", "a.go:funcB:10"}, fm.NodeIDs)
}

func TestGraph_Fingerprint(t *testing.T) {
	t.Parallel()

	g1 := callChainGraph()
	g2 := callChainGraph()
	assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())

	g2.AddNode(testNode("test:e:40", "funcE", NodeFunction, "test.go", 40, 45))
	assert.NotEqual(t, g1.Fingerprint(), g2.Fingerprint())
}

func TestGraph_IndexSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	g := callChainGraph()
	snapshot := g.ExtractIndices()

	// A graph with the same data but freshly built indices must be able to
	// adopt the snapshot and answer identically.
	clone := New("test", "go")
	clone.Nodes = append(clone.Nodes, g.Nodes...)
	clone.Edges = append(clone.Edges, g.Edges...)
	clone.ApplyIndices(snapshot)

	assert.NotNil(t, clone.GetNodeByID("test:c:20"))
	assert.Len(t, clone.FindCallers("funcD"), 1)
	assert.Len(t, clone.GetOutgoingEdges("test:a:1"), 1)
}
