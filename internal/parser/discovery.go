package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs are never descended into, regardless of ignore configuration.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
	"venv":         {},
	".venv":        {},
	"dist":         {},
	"build":        {},
	"target":       {},
}

// Discover walks root and returns the files the parser accepts, sorted.
// Exclusion layers, in order: the built-in skip list and hidden directories,
// the repository's .gitignore if present, caller-supplied glob patterns, and
// the parser's own test-file rule. Patterns match the slash-separated path
// relative to root.
func Discover(root string, fp FileParser, ignorePatterns []string) ([]string, error) {
	globs := make([]glob.Glob, 0, len(ignorePatterns))
	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	// Best effort: a repo without .gitignore just skips this layer.
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	exts := make(map[string]struct{}, len(fp.Extensions()))
	for _, ext := range fp.Extensions() {
		exts[ext] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := exts[filepath.Ext(name)]; !ok {
			return nil
		}
		if fp.IsTestFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		for _, g := range globs {
			if g.Match(rel) {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
