package updater

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codenav/internal/git"
	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/parser"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fullIndex(t *testing.T, root string) *graph.Graph {
	t.Helper()
	g := graph.New(root, "go")
	require.NoError(t, parser.ParseDirectory(parser.NewGoParser(), root, g, parser.DirectoryOptions{Workers: 1}))
	return g
}

func nodeIDs(g *graph.Graph) []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

func edgeKeys(g *graph.Graph) []string {
	keys := make([]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		keys = append(keys, e.From+"->"+e.To)
	}
	sort.Strings(keys)
	return keys
}

// The core incremental guarantee: updating an existing graph after edits
// yields the same nodes and edges as indexing the edited tree from scratch.
func TestUpdate_EquivalentToFullReindex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.go", "package app\n\nfunc KeepA() {}\n")
	writeFile(t, root, "b.go", "package app\n\nfunc KeepB() {}\n")
	writeFile(t, root, "c.go", "package app\n\nfunc KeepC() {}\n")
	modified := writeFile(t, root, "mod.go", "package app\n\nfunc Old() {}\n")
	doomed := writeFile(t, root, "gone.go", "package app\n\nfunc Doomed() {}\n")

	g := fullIndex(t, root)
	require.Len(t, g.Nodes, 5)

	// Edit one file, delete another, add a third.
	require.NoError(t, os.WriteFile(modified, []byte("package app\n\nfunc New() {\n\tKeepA()\n}\n"), 0644))
	require.NoError(t, os.Chtimes(modified, time.Now(), time.Now().Add(time.Hour)))
	require.NoError(t, os.Remove(doomed))
	added := writeFile(t, root, "fresh.go", "package app\n\nfunc Fresh() {}\n")

	ops := git.NewMockOps()
	ops.Repository = false // force the timestamp fallback
	result, err := New(ops).Update(g, root, parser.NewGoParser(), Options{})
	require.NoError(t, err)

	assert.Equal(t, MethodTimestamps, result.DetectionMethod)
	assert.ElementsMatch(t, []string{modified, added}, result.ChangedFiles)
	assert.Equal(t, []string{doomed}, result.DeletedFiles)
	assert.Equal(t, 2, result.FilesParsed)

	fresh := fullIndex(t, root)
	assert.Equal(t, nodeIDs(fresh), nodeIDs(g))
	assert.Equal(t, edgeKeys(fresh), edgeKeys(g))

	// The updated graph answers queries without an explicit rebuild.
	callers := g.FindCallers("KeepA")
	require.Len(t, callers, 1)
	assert.Equal(t, filepath.Join(root, "mod.go"), callers[0].FilePath)
}

func TestUpdate_GitDetection(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.go", "package app\n\nfunc Stable() {}\n")
	changed := writeFile(t, root, "b.go", "package app\n\nfunc Before() {}\n")

	g := fullIndex(t, root)
	require.NoError(t, os.WriteFile(changed, []byte("package app\n\nfunc After() {}\n"), 0644))

	ops := git.NewMockOps()
	ops.Changed = []string{changed}
	result, err := New(ops).Update(g, root, parser.NewGoParser(), Options{})
	require.NoError(t, err)

	assert.Equal(t, MethodGit, result.DetectionMethod)
	assert.Equal(t, []string{changed}, result.ChangedFiles)
	assert.Equal(t, ops.Hash, g.Metadata.GitCommitHash)

	assert.Empty(t, g.GetNodesByName("Before"))
	assert.Len(t, g.GetNodesByName("After"), 1)
	// The untouched file keeps its original nodes.
	assert.Len(t, g.GetNodesByName("Stable"), 1)
}

func TestUpdate_NoChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.go", "package app\n\nfunc Only() {}\n")

	g := fullIndex(t, root)
	before := nodeIDs(g)

	ops := git.NewMockOps()
	result, err := New(ops).Update(g, root, parser.NewGoParser(), Options{})
	require.NoError(t, err)

	assert.Empty(t, result.ChangedFiles)
	assert.Empty(t, result.DeletedFiles)
	assert.Zero(t, result.FilesParsed)
	assert.Equal(t, before, nodeIDs(g))
}

func TestUpdate_DeletedFileMetadataDropped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "keep.go", "package app\n\nfunc Keep() {}\n")
	doomed := writeFile(t, root, "gone.go", "package app\n\nfunc Gone() {}\n")

	g := fullIndex(t, root)
	require.Contains(t, g.Metadata.FileMetadata, doomed)

	require.NoError(t, os.Remove(doomed))
	ops := git.NewMockOps()
	_, err := New(ops).Update(g, root, parser.NewGoParser(), Options{})
	require.NoError(t, err)

	assert.NotContains(t, g.Metadata.FileMetadata, doomed)
	assert.Empty(t, g.GetNodesByName("Gone"))
	assert.Equal(t, 1, g.Metadata.Stats.TotalNodes)
}
