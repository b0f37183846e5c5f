package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
)

var (
	pathFrom     string
	pathTo       string
	pathShortest bool
	pathAll      bool
	pathMaxDepth int
)

// defaultPathLimit bounds enumeration when neither --shortest nor --all is
// given; full enumeration is exponential on dense graphs.
const defaultPathLimit = 10

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Find call paths between two functions",
	Long: `Path searches the call graph from --from toward --to. By default the
first ` + "10" + ` paths are shown; --shortest runs a breadth-first search for a
minimum-hop path, and --all enumerates every path up to the configured cap:

  codenav path --from main --to SaveOrder
  codenav path --from main --to SaveOrder --shortest
  codenav path --from main --to SaveOrder --all --max-depth 6`,
	RunE: runPath,
}

func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.Flags().StringVar(&pathFrom, "from", "", "start function name (required)")
	pathCmd.Flags().StringVar(&pathTo, "to", "", "target function name (required)")
	pathCmd.Flags().BoolVar(&pathShortest, "shortest", false, "only the shortest path")
	pathCmd.Flags().BoolVar(&pathAll, "all", false, "every path up to the configured cap")
	pathCmd.Flags().IntVar(&pathMaxDepth, "max-depth", 10, "maximum path length in hops")
	pathCmd.MarkFlagRequired("from")
	pathCmd.MarkFlagRequired("to")
}

func runPath(cmd *cobra.Command, args []string) error {
	g, err := openGraph()
	if err != nil {
		return err
	}

	starts := g.GetNodesByName(pathFrom)
	if len(starts) == 0 {
		return fmt.Errorf("function %q not found in graph", pathFrom)
	}

	if pathShortest {
		for _, start := range starts {
			if path, ok := g.FindShortestPath(start.ID, pathTo, pathMaxDepth); ok {
				fmt.Println(formatPath(append([]string{start.Name}, path...)))
				return nil
			}
		}
		info("No path from %s to %s within %d hops", pathFrom, pathTo, pathMaxDepth)
		return nil
	}

	limit := defaultPathLimit
	if pathAll {
		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		limit = cfg.Query.MaxPaths
	}

	var paths [][]string
	for _, start := range starts {
		remaining := limit - len(paths)
		if remaining <= 0 {
			break
		}
		paths = append(paths, g.FindPathsLimited(start.ID, pathTo, pathMaxDepth, remaining)...)
	}

	if len(paths) == 0 {
		info("No path from %s to %s within %d hops", pathFrom, pathTo, pathMaxDepth)
		return nil
	}
	for _, p := range paths {
		fmt.Println(formatPath(p))
	}
	info("\n%d paths found", len(paths))
	return nil
}

func formatPath(names []string) string {
	return strings.Join(names, " -> ")
}
