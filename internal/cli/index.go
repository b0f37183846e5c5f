package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
	"github.com/mvp-joe/codenav/internal/git"
	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/parser"
	"github.com/mvp-joe/codenav/internal/storage"
	"github.com/mvp-joe/codenav/internal/updater"
	"github.com/mvp-joe/codenav/internal/watcher"
)

var (
	indexOutput      string
	indexLanguage    string
	indexExclude     []string
	indexWorkers     int
	indexIncremental bool
	indexForce       bool
	indexWatch       bool
)

var indexCmd = &cobra.Command{
	Use:   "index [directory]",
	Short: "Build or update the code graph for a directory",
	Long: `Index parses a source tree into a call graph and saves it.

With --incremental and an existing graph file, only files that changed since
the last run are reparsed. With --watch, indexing keeps running and applies
incremental updates as files change.

Examples:
  codenav index .
  codenav index --language python src/
  codenav index --incremental --watch .`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "output graph file (default from config)")
	indexCmd.Flags().StringVarP(&indexLanguage, "language", "l", "", "source language: go, typescript, javascript, python (default from config)")
	indexCmd.Flags().StringArrayVarP(&indexExclude, "exclude", "e", nil, "glob pattern to exclude (repeatable)")
	indexCmd.Flags().IntVar(&indexWorkers, "workers", 0, "parallel parse workers (default one per CPU)")
	indexCmd.Flags().BoolVar(&indexIncremental, "incremental", false, "update an existing graph instead of reindexing")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "full reindex even with --incremental")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep running and reindex on file changes")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := absPath(root)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	language := cfg.Language
	if indexLanguage != "" {
		language = indexLanguage
	}
	output := cfg.GraphPath(root)
	if indexOutput != "" {
		output = indexOutput
	}
	workers := cfg.Index.Workers
	if indexWorkers > 0 {
		workers = indexWorkers
	}
	ignore := append([]string{}, cfg.Paths.Ignore...)
	ignore = append(ignore, indexExclude...)

	fp, err := parser.New(language)
	if err != nil {
		return err
	}
	ops := git.NewOperations()

	useIncremental := indexIncremental && !indexForce && fileExists(output)
	var g *graph.Graph

	if useIncremental {
		g, err = incrementalIndex(root, output, fp, ops, ignore)
	} else {
		g, err = fullIndex(root, fp, ops, ignore, workers)
	}
	if err != nil {
		return err
	}

	if err := saveGraph(g, output); err != nil {
		return err
	}
	info("Graph saved to %s (%d nodes, %d edges)", output, len(g.Nodes), len(g.Edges))

	if indexWatch {
		return watchLoop(root, output, g, fp, ops, ignore, cfg.Watch.DebounceMs)
	}
	return nil
}

func fullIndex(root string, fp parser.FileParser, ops git.Operations, ignore []string, workers int) (*graph.Graph, error) {
	info("Indexing %s...", root)

	var bar *progressbar.ProgressBar
	var onFile func(string)
	if !quiet {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Parsing files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
		)
		onFile = func(string) { bar.Add(1) }
	}

	g := graph.New(root, fp.Language())
	err := parser.ParseDirectory(fp, root, g, parser.DirectoryOptions{
		Workers:        workers,
		IgnorePatterns: ignore,
		OnFile:         onFile,
	})
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return nil, err
	}

	g.Metadata.GitCommitHash = ops.CommitHash(root)
	info("Parsed %d files", g.Metadata.Stats.FilesParsed)
	return g, nil
}

func incrementalIndex(root, output string, fp parser.FileParser, ops git.Operations, ignore []string) (*graph.Graph, error) {
	info("Incremental update mode...")

	g, err := loadGraph(output)
	if err != nil {
		// A corrupt graph file falls back to a full build.
		info("Failed to load existing graph (%v), performing full index", err)
		return fullIndex(root, fp, ops, ignore, 0)
	}
	info("Loaded existing graph (%d nodes)", len(g.Nodes))

	result, err := updater.New(ops).Update(g, root, fp, updater.Options{IgnorePatterns: ignore})
	if err != nil {
		return nil, err
	}

	info("Detected %d changed files via %s", len(result.ChangedFiles), result.DetectionMethod)
	if len(result.DeletedFiles) > 0 {
		info("Detected %d deleted files", len(result.DeletedFiles))
	}
	return g, nil
}

func watchLoop(root, output string, g *graph.Graph, fp parser.FileParser, ops git.Operations, ignore []string, debounceMs int) error {
	w, err := watcher.New(root, fp.Extensions(), time.Duration(debounceMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		info("\nStopping watch...")
		cancel()
		w.Close()
	}()

	info("Watching %s for changes (Ctrl+C to stop)...", root)
	u := updater.New(ops)

	w.Run(ctx, func(files []string) {
		result, err := u.Update(g, root, fp, updater.Options{IgnorePatterns: ignore})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: update failed:", err)
			return
		}
		if err := saveGraph(g, output); err != nil {
			fmt.Fprintln(os.Stderr, "Error: save failed:", err)
			return
		}
		info("Reindexed %d files (%d nodes, %d edges)", result.FilesParsed, len(g.Nodes), len(g.Edges))
	})
	return nil
}

func saveGraph(g *graph.Graph, output string) error {
	if err := storage.Save(g, output); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	if err := storage.SaveIndexCache(g, output); err != nil {
		return fmt.Errorf("failed to save index cache: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return abs, nil
}
