package updater

import (
	"os"

	"github.com/mvp-joe/codenav/internal/git"
	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/parser"
)

// Detection methods reported by DetectChanged.
const (
	MethodGit        = "git"
	MethodTimestamps = "timestamps"
)

// changeDetector finds the files whose graph entries are stale. Git is the
// preferred source; outside a repository it falls back to comparing stored
// modification markers against the filesystem.
type changeDetector struct {
	git git.Operations
}

// DetectChanged returns the files to reparse and the detection method used.
//
// The timestamp fallback reports a file when it is absent from the graph's
// file metadata (new file) or when its current modification marker differs
// from the stored one. Markers are opaque strings compared for equality only.
func (d *changeDetector) DetectChanged(root string, existing *graph.Graph, fp parser.FileParser, ignorePatterns []string) ([]string, string, error) {
	if d.git.IsRepository(root) {
		if files, err := d.git.ChangedFiles(root, fp.Extensions()); err == nil {
			return files, MethodGit, nil
		}
	}

	discovered, err := parser.Discover(root, fp, ignorePatterns)
	if err != nil {
		return nil, "", err
	}

	var changed []string
	for _, path := range discovered {
		fm, tracked := existing.Metadata.FileMetadata[path]
		if !tracked || parser.ModMarker(path) != fm.LastModified {
			changed = append(changed, path)
		}
	}
	return changed, MethodTimestamps, nil
}

// DetectDeleted returns the tracked files that no longer exist on disk.
func (d *changeDetector) DetectDeleted(existing *graph.Graph) []string {
	var deleted []string
	for path := range existing.Metadata.FileMetadata {
		if _, err := os.Stat(path); err != nil {
			deleted = append(deleted, path)
		}
	}
	return deleted
}
