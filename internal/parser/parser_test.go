package parser

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codenav/internal/graph"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestNew_LanguageAliases(t *testing.T) {
	t.Parallel()

	for alias, want := range map[string]string{
		"go": "go", "golang": "go",
		"python": "python", "py": "python",
		"typescript": "typescript", "ts": "typescript",
		"javascript": "javascript", "js": "javascript",
	} {
		p, err := New(alias)
		require.NoError(t, err)
		assert.Equal(t, want, p.Language())
	}

	_, err := New("cobol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestDiscover_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.go":             "package main\n",
		"util/helpers.go":     "package util\n",
		"util/helpers_test.go": "package util\n",
		"vendor/dep/dep.go":   "package dep\n",
		".hidden/secret.go":   "package hidden\n",
		"README.md":           "# readme\n",
		"gen/schema.go":       "package gen\n",
	})

	files, err := Discover(root, NewGoParser(), []string{"gen/**"})
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "main.go"), files[0])
	assert.Equal(t, filepath.Join(root, "util/helpers.go"), files[1])
}

func TestDiscover_RespectsGitignore(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		".gitignore":   "generated/\n",
		"main.go":      "package main\n",
		"generated/g.go": "package generated\n",
	})

	files, err := Discover(root, NewGoParser(), nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), files[0])
}

func TestDiscover_InvalidPattern(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := Discover(root, NewGoParser(), []string{"[unterminated"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestParseDirectory_MergesAllFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.go": "package app\n\nfunc First() {\n\tSecond()\n}\n",
		"b.go": "package app\n\nfunc Second() {}\n",
		"c.go": "package app\n\nfunc Third() {\n\tFirst()\n}\n",
	})

	var parsed int64
	g := graph.New(root, "go")
	err := ParseDirectory(NewGoParser(), root, g, DirectoryOptions{
		Workers: 2,
		OnFile:  func(string) { atomic.AddInt64(&parsed, 1) },
	})
	require.NoError(t, err)

	assert.EqualValues(t, 3, parsed)
	assert.Equal(t, 3, g.Metadata.Stats.FilesParsed)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)

	// Deterministic layout: files merge in sorted discovery order.
	assert.Equal(t, "First", g.Nodes[0].Name)
	assert.Equal(t, "Second", g.Nodes[1].Name)
	assert.Equal(t, "Third", g.Nodes[2].Name)

	// Cross-file resolution works once merged.
	callers := g.FindCallers("Second")
	require.Len(t, callers, 1)
	caller := g.GetNodeByID(callers[0].From)
	require.NotNil(t, caller)
	assert.Equal(t, "First", caller.Name)

	// Every parsed file is tracked for incremental updates.
	require.Len(t, g.Metadata.FileMetadata, 3)
	fm, ok := g.Metadata.FileMetadata[filepath.Join(root, "a.go")]
	require.True(t, ok)
	assert.NotEmpty(t, fm.LastModified)
	assert.Equal(t, []string{nodeID(filepath.Join(root, "a.go"), "First", 3)}, fm.NodeIDs)
}

func TestParseDirectory_EmptyTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	g := graph.New(root, "go")
	require.NoError(t, ParseDirectory(NewGoParser(), root, g, DirectoryOptions{}))
	assert.Zero(t, g.Metadata.Stats.FilesParsed)
	assert.Empty(t, g.Nodes)
}
