// Package parser turns source trees into call graphs using tree-sitter
// grammars. One FileParser exists per language; all of them extract the same
// shape of data (declarations plus the call sites inside them) so the graph
// layer never needs to know which language produced it.
package parser

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/mvp-joe/codenav/internal/graph"
)

// FileParser extracts declarations and call sites from source files of one
// language. Implementations are stateless and safe for concurrent use; each
// ParseFile call creates its own tree-sitter parser.
type FileParser interface {
	// Language is the canonical language name recorded in graph metadata.
	Language() string
	// Extensions lists the file extensions this parser accepts, with dots.
	Extensions() []string
	// IsTestFile reports whether a path holds test code, which indexing skips.
	IsTestFile(path string) bool
	// ParseFile parses one file and adds its nodes and edges to the graph.
	ParseFile(path string, g *graph.Graph) error
}

// New returns the parser for a language name. Common aliases are accepted.
func New(language string) (FileParser, error) {
	switch strings.ToLower(language) {
	case "go", "golang":
		return NewGoParser(), nil
	case "python", "py":
		return NewPythonParser(), nil
	case "typescript", "ts":
		return NewTypeScriptParser("typescript"), nil
	case "javascript", "js":
		return NewTypeScriptParser("javascript"), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", language)
	}
}

// DirectoryOptions tunes a full directory parse.
type DirectoryOptions struct {
	// Workers caps the parse goroutines. Zero means GOMAXPROCS.
	Workers int
	// IgnorePatterns are extra glob patterns excluded from discovery, on top
	// of .gitignore and the built-in skip list.
	IgnorePatterns []string
	// OnFile, when set, is called after each file finishes parsing. It may be
	// called from multiple goroutines.
	OnFile func(path string)
}

// ParseDirectory discovers and parses every matching file under root into g.
// Files parse in parallel into private partial graphs which merge
// sequentially in discovery order, so the resulting graph layout is
// deterministic for a given tree. Files that fail to parse are logged and
// skipped rather than failing the run.
func ParseDirectory(fp FileParser, root string, g *graph.Graph, opts DirectoryOptions) error {
	files, err := Discover(root, fp, opts.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("failed to discover source files: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	partials := make([]*graph.Graph, len(files))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				path := files[i]
				partial := graph.New(root, fp.Language())
				if err := fp.ParseFile(path, partial); err != nil {
					log.Printf("Warning: failed to parse %s: %v", path, err)
					continue
				}
				partial.TrackFileMetadata(path, ModMarker(path))
				partials[i] = partial
				if opts.OnFile != nil {
					opts.OnFile(path)
				}
			}
		}()
	}

	for i := range files {
		indices <- i
	}
	close(indices)
	wg.Wait()

	parsed := 0
	for _, partial := range partials {
		if partial == nil {
			continue
		}
		g.Merge(partial)
		parsed++
	}

	g.Metadata.Stats.FilesParsed = parsed
	g.BuildIndexes()
	return nil
}

// ModMarker returns the opaque last-modified marker stored in file metadata.
// Markers are only ever compared for equality.
func ModMarker(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().String()
}
