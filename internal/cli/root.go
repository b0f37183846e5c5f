// Package cli wires the codenav commands: building graphs, querying them,
// and exporting them for other tools.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
	"github.com/mvp-joe/codenav/internal/graph"
	"github.com/mvp-joe/codenav/internal/storage"
)

var (
	quiet     bool
	verbose   bool
	graphFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "codenav",
	Short: "Source code call-graph navigation",
	Long: `codenav builds a call graph of a codebase and answers structural
questions about it: what a function calls, what calls it, how two functions
connect, and where the call hotspots are.

The graph persists to a compact binary file and updates incrementally as
files change.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "errors only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&graphFile, "graph", "g", "", "graph file to read (default from config)")
}

func loadGraph(path string) (*graph.Graph, error) {
	g, err := storage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", path, err)
	}
	return g, nil
}

// openGraph loads the graph named by --graph, falling back to the configured
// path in the current directory.
func openGraph() (*graph.Graph, error) {
	path := graphFile
	if path == "" {
		cfg, err := config.Load(".")
		if err != nil {
			return nil, err
		}
		path = cfg.GraphPath(".")
	}
	return loadGraph(path)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}
