// Package git shells out to the git CLI for the pieces of repository state
// incremental indexing needs: which files changed, and which commit the graph
// was built from.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Operations defines the git queries used by incremental updates.
// This allows mocking git commands in tests.
type Operations interface {
	// IsRepository reports whether root is inside a git worktree.
	IsRepository(root string) bool

	// ChangedFiles returns the absolute paths of files changed against HEAD
	// (staged and unstaged) plus untracked files, filtered to the given
	// extensions. Deleted files are excluded; they no longer exist on disk
	// and are detected separately from graph metadata.
	ChangedFiles(root string, extensions []string) ([]string, error)

	// CommitHash returns the full HEAD commit hash, or "" when root is not a
	// repository or git is unavailable.
	CommitHash(root string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) IsRepository(root string) bool {
	cmd := exec.Command("git", "-C", root, "rev-parse", "--is-inside-work-tree")
	output, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(output)) == "true"
}

func (g *gitOps) ChangedFiles(root string, extensions []string) ([]string, error) {
	cmd := exec.Command("git", "-C", root, "diff", "--name-only", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	collect := func(raw string) {
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			path := filepath.Join(root, line)
			if !matchesExtension(path, extensions) || seen[path] {
				continue
			}
			if _, err := os.Stat(path); err != nil {
				continue // deleted or unreadable
			}
			seen[path] = true
			files = append(files, path)
		}
	}
	collect(string(output))

	// Untracked files never show in diff output.
	cmd = exec.Command("git", "-C", root, "ls-files", "--others", "--exclude-standard")
	if output, err := cmd.Output(); err == nil {
		collect(string(output))
	}

	return files, nil
}

func (g *gitOps) CommitHash(root string) string {
	cmd := exec.Command("git", "-C", root, "rev-parse", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

func matchesExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
