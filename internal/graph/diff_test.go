package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_Identical(t *testing.T) {
	t.Parallel()

	g := callChainGraph()
	diff := g.Diff(g)

	assert.Empty(t, diff.AddedNodes)
	assert.Empty(t, diff.RemovedNodes)
	assert.Empty(t, diff.ChangedNodes)
	assert.Empty(t, diff.ComplexityChanges)
	assert.Zero(t, diff.AddedEdgesCount)
	assert.Zero(t, diff.RemovedEdgesCount)
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	t.Parallel()

	old := callChainGraph()

	updated := callChainGraph()
	updated.AddNode(testNode("test:e:40", "funcE", NodeFunction, "test.go", 40, 45))
	updated.AddEdge(testEdge("test:d:30", "funcE", "test.go", 32))

	diff := old.Diff(updated)
	assert.Equal(t, []string{"test:e:40"}, diff.AddedNodes)
	assert.Empty(t, diff.RemovedNodes)
	assert.Equal(t, 1, diff.AddedEdgesCount)
	assert.Zero(t, diff.RemovedEdgesCount)

	reverse := updated.Diff(old)
	assert.Equal(t, []string{"test:e:40"}, reverse.RemovedNodes)
	assert.Empty(t, reverse.AddedNodes)
	assert.Equal(t, 1, reverse.RemovedEdgesCount)
}

func TestDiff_ChangedSignatureAndLine(t *testing.T) {
	t.Parallel()

	old := callChainGraph()
	updated := callChainGraph()

	updated.Nodes[1].Signature = "func funcB(ctx context.Context) {}"
	updated.Nodes[2].Line = 21

	diff := old.Diff(updated)
	require.Len(t, diff.ChangedNodes, 2)

	assert.Equal(t, "test:b:10", diff.ChangedNodes[0].NodeID)
	assert.Equal(t, "func funcB() {}", diff.ChangedNodes[0].OldSignature)
	assert.Equal(t, "func funcB(ctx context.Context) {}", diff.ChangedNodes[0].NewSignature)

	assert.Equal(t, "test:c:20", diff.ChangedNodes[1].NodeID)
	assert.Equal(t, 20, diff.ChangedNodes[1].OldLine)
	assert.Equal(t, 21, diff.ChangedNodes[1].NewLine)
}

func TestDiff_ComplexityChanges(t *testing.T) {
	t.Parallel()

	old := callChainGraph()
	updated := callChainGraph()

	// funcA grows a second outgoing call.
	updated.AddEdge(testEdge("test:a:1", "funcD", "test.go", 4))

	diff := old.Diff(updated)
	require.Len(t, diff.ComplexityChanges, 2)

	caller := diff.ComplexityChanges[0]
	assert.Equal(t, "test:a:1", caller.NodeID)
	assert.Equal(t, 1, caller.OldFanOut)
	assert.Equal(t, 2, caller.NewFanOut)
	assert.Equal(t, 1, caller.Change)

	// The new edge also raises the target's fan-in.
	callee := diff.ComplexityChanges[1]
	assert.Equal(t, "test:d:30", callee.NodeID)
	assert.Equal(t, 1, callee.OldFanIn)
	assert.Equal(t, 2, callee.NewFanIn)
	assert.Equal(t, 1, callee.Change)
}
