package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/storage"
)

func TestParseExportFilter(t *testing.T) {
	t.Parallel()

	opts, err := parseExportFilter("")
	require.NoError(t, err)
	assert.Equal(t, graph.FilterOptions{}, opts)

	opts, err = parseExportFilter("package:api")
	require.NoError(t, err)
	assert.Equal(t, "api", opts.Package)

	opts, err = parseExportFilter("type:method")
	require.NoError(t, err)
	assert.Equal(t, graph.NodeMethod, opts.Type)

	for _, bad := range []string{"api", "package:", "color:red"} {
		_, err = parseExportFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchNodes(t *testing.T) {
	g := graph.New("test", "go")
	g.AddNode(graph.Node{ID: "a.go:HandleUsers:1", Name: "HandleUsers", Type: graph.NodeFunction, FilePath: "a.go", Line: 1, Package: "api"})
	g.AddNode(graph.Node{ID: "a.go:HandleOrders:10", Name: "HandleOrders", Type: graph.NodeFunction, FilePath: "a.go", Line: 10, Package: "api"})
	g.AddNode(graph.Node{ID: "b.go:parse:1", Name: "parse", Type: graph.NodeMethod, FilePath: "b.go", Line: 1, Package: "util"})

	reset := func() {
		queryName, queryType, queryPackage, queryFile = "", "", "", ""
	}

	t.Run("exact name", func(t *testing.T) {
		defer reset()
		queryName = "parse"
		matches, err := matchNodes(g)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "parse", matches[0].Name)
	})

	t.Run("glob name", func(t *testing.T) {
		defer reset()
		queryName = "Handle*"
		matches, err := matchNodes(g)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("type and package combine", func(t *testing.T) {
		defer reset()
		queryType = "function"
		queryPackage = "api"
		matches, err := matchNodes(g)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("file substring", func(t *testing.T) {
		defer reset()
		queryFile = "b.go"
		matches, err := matchNodes(g)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "parse", matches[0].Name)
	})

	t.Run("invalid glob", func(t *testing.T) {
		defer reset()
		queryName = "Handle["
		_, err := matchNodes(g)
		assert.Error(t, err)
	})
}

func TestIndexCommand_WritesGraph(t *testing.T) {
	root := t.TempDir()
	src := `package main

func main() {
	helper()
}

func helper() {}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(src), 0644))
	output := filepath.Join(t.TempDir(), "graph.bin")

	rootCmd.SetArgs([]string{"index", root, "-o", output, "-q"})
	require.NoError(t, rootCmd.Execute())

	g, err := storage.Load(output)
	require.NoError(t, err)
	assert.Len(t, g.GetNodesByName("main"), 1)
	assert.Len(t, g.GetNodesByName("helper"), 1)
	require.Len(t, g.FindCallers("helper"), 1)

	// The index cache rides along with the graph file.
	_, err = os.Stat(storage.IndexCachePath(output))
	assert.NoError(t, err)
}
