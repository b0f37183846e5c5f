// Package updater applies incremental, file-scoped updates to an existing
// graph: stale files have their nodes and outgoing edges removed and are
// reparsed in place, leaving the rest of the graph untouched.
package updater

import (
	"log"
	"sort"
	"time"

	"github.com/mvp-joe/codenav/internal/git"
	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/parser"
)

// Options tunes one incremental update.
type Options struct {
	// IgnorePatterns are extra glob exclusions for the timestamp fallback's
	// file discovery.
	IgnorePatterns []string
}

// Result summarizes what an update did.
type Result struct {
	ChangedFiles    []string
	DeletedFiles    []string
	DetectionMethod string
	FilesParsed     int
}

// Updater performs incremental updates against a previously built graph.
type Updater struct {
	git      git.Operations
	detector changeDetector
}

// New creates an updater backed by the given git operations.
func New(ops git.Operations) *Updater {
	return &Updater{git: ops, detector: changeDetector{git: ops}}
}

// Update brings g up to date with the tree at root. For every deleted file
// its nodes are dropped; for every changed file the stale nodes are dropped
// and the file is reparsed into the graph. Stats, generation time, and the
// git commit hash refresh afterwards, so an update over an unchanged tree is
// equivalent to a fresh index of it, modulo timestamps.
//
// Per-file parse failures are logged and skipped; the file's old nodes stay
// removed so a later successful parse starts clean.
func (u *Updater) Update(g *graph.Graph, root string, fp parser.FileParser, opts Options) (*Result, error) {
	changed, method, err := u.detector.DetectChanged(root, g, fp, opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	deleted := u.detector.DetectDeleted(g)
	sort.Strings(deleted)

	for _, path := range deleted {
		g.RemoveNodesFromFile(path)
	}
	for _, path := range changed {
		g.RemoveNodesFromFile(path)
	}

	parsed := 0
	for _, path := range changed {
		if err := fp.ParseFile(path, g); err != nil {
			log.Printf("Warning: failed to parse %s: %v", path, err)
			continue
		}
		g.TrackFileMetadata(path, parser.ModMarker(path))
		parsed++
	}

	g.Metadata.GeneratedAt = time.Now().UTC()
	g.Metadata.Stats.FilesParsed = parsed
	g.Metadata.Stats.TotalNodes = len(g.Nodes)
	g.Metadata.Stats.TotalEdges = len(g.Edges)
	g.Metadata.GitCommitHash = u.git.CommitHash(root)

	return &Result{
		ChangedFiles:    changed,
		DeletedFiles:    deleted,
		DetectionMethod: method,
		FilesParsed:     parsed,
	}, nil
}
