package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
	"github.com/mvp-joe/codenav/internal/graph"
)

var (
	traceFrom      string
	traceDepth     int
	traceOutput    string
	traceShowLines bool
	traceFilter    string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Show what a function calls, transitively",
	Long: `Trace walks outgoing call edges from every node matching --from, down
to the given depth, and prints the dependency tree:

  codenav trace --from main
  codenav trace --from HandleRequest -d 3 --show-lines`,
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringVar(&traceFrom, "from", "", "function name to trace from (required)")
	traceCmd.Flags().IntVarP(&traceDepth, "depth", "d", 0, "maximum trace depth (default from config)")
	traceCmd.Flags().StringVarP(&traceOutput, "output", "o", "tree", "output format: tree or json")
	traceCmd.Flags().BoolVar(&traceShowLines, "show-lines", false, "include file:line for each call site")
	traceCmd.Flags().StringVarP(&traceFilter, "filter", "f", "", "only show targets containing this substring")
	traceCmd.MarkFlagRequired("from")
}

func runTrace(cmd *cobra.Command, args []string) error {
	g, err := openGraph()
	if err != nil {
		return err
	}
	depth := traceDepth
	if depth <= 0 {
		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		depth = cfg.Query.DefaultDepth
	}

	starts := g.GetNodesByName(traceFrom)
	if len(starts) == 0 {
		return fmt.Errorf("function %q not found in graph", traceFrom)
	}

	var results []graph.TraceResult
	for _, start := range starts {
		results = append(results, g.TraceDependencies(start.ID, depth)...)
	}
	if traceFilter != "" {
		filtered := results[:0]
		for _, r := range results {
			if strings.Contains(r.ToName, traceFilter) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	switch traceOutput {
	case "json":
		return printJSON(results)
	case "tree":
		printTraceTree(g, results)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected tree or json)", traceOutput)
	}
}

func printTraceTree(g *graph.Graph, results []graph.TraceResult) {
	if len(results) == 0 {
		info("No dependencies found for %s", traceFrom)
		return
	}

	fmt.Println(traceFrom)
	for _, r := range results {
		indent := strings.Repeat("  ", r.Depth+1)
		line := fmt.Sprintf("%s-> %s", indent, r.ToName)
		if traceShowLines {
			line += fmt.Sprintf("  (%s:%d)", r.FilePath, r.Line)
		}
		fmt.Println(line)
	}
	info("\n%d calls traced", len(results))
}
