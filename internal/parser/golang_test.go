package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codenav/internal/graph"
)

const goSample = `package payments

import "fmt"

func Charge(amount int, currency string) error {
	if err := validate(amount); err != nil {
		return err
	}
	fmt.Println("charged")
	return nil
}

func validate(amount int) error {
	return nil
}

type Gateway struct{}

func (g *Gateway) Refund(amount int) error {
	return g.submit(amount)
}

func (g *Gateway) submit(amount int) error {
	return nil
}
`

func parseSource(t *testing.T, fp FileParser, name, source string) (*graph.Graph, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))

	g := graph.New(filepath.Dir(path), fp.Language())
	require.NoError(t, fp.ParseFile(path, g))
	return g, path
}

func TestGoParser_ExtractsFunctionsAndMethods(t *testing.T) {
	t.Parallel()

	g, path := parseSource(t, NewGoParser(), "payments.go", goSample)

	require.Len(t, g.Nodes, 4)

	charge := g.GetNodesByName("Charge")
	require.Len(t, charge, 1)
	assert.Equal(t, graph.NodeFunction, charge[0].Type)
	assert.Equal(t, "payments", charge[0].Package)
	assert.Equal(t, 5, charge[0].Line)
	assert.Equal(t, 11, charge[0].EndLine)
	assert.Equal(t, "func Charge(amount int, currency string) error {", charge[0].Signature)
	assert.Equal(t, nodeID(path, "Charge", 5), charge[0].ID)

	require.Len(t, charge[0].Parameters, 2)
	assert.Equal(t, graph.Parameter{Name: "amount", ParamType: "int"}, charge[0].Parameters[0])
	assert.Equal(t, graph.Parameter{Name: "currency", ParamType: "string"}, charge[0].Parameters[1])

	refund := g.GetNodesByName("Refund")
	require.Len(t, refund, 1)
	assert.Equal(t, graph.NodeMethod, refund[0].Type)
	require.Len(t, refund[0].Parameters, 1)
	assert.Equal(t, graph.Parameter{Name: "amount", ParamType: "int"}, refund[0].Parameters[0])
}

func TestGoParser_ExtractsCallEdges(t *testing.T) {
	t.Parallel()

	g, path := parseSource(t, NewGoParser(), "payments.go", goSample)

	out := g.GetOutgoingEdges(nodeID(path, "Charge", 5))
	require.Len(t, out, 2)
	assert.Equal(t, "validate", out[0].To)
	assert.Equal(t, graph.EdgeCalls, out[0].Type)
	assert.Equal(t, "validate(amount)", out[0].CallSite)
	assert.Equal(t, 6, out[0].Line)
	assert.Equal(t, "Println", out[1].To)

	// Method call through the receiver resolves to the selector field.
	refundOut := g.GetOutgoingEdges(nodeID(path, "Refund", 19))
	require.Len(t, refundOut, 1)
	assert.Equal(t, "submit", refundOut[0].To)
}

func TestGoParser_EmptyFile(t *testing.T) {
	t.Parallel()

	g, _ := parseSource(t, NewGoParser(), "empty.go", "package empty\n")
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestGoParser_IsTestFile(t *testing.T) {
	t.Parallel()

	p := NewGoParser()
	assert.True(t, p.IsTestFile("pkg/foo_test.go"))
	assert.False(t, p.IsTestFile("pkg/foo.go"))
}
