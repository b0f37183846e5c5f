package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
	"github.com/mvp-joe/codenav/internal/graph"
)

var (
	analyzeThreshold int
	analyzeLimit     int
	analyzeOutput    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <complexity|coupling|hotspots|circular>",
	Short: "Run a structural analysis over the whole graph",
	Long: `Analyze computes graph-wide structural reports:

  complexity  per-function fan-out based complexity above --threshold
  coupling    functions ranked by fan-in plus fan-out
  hotspots    the most-called names
  circular    call cycles`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"complexity", "coupling", "hotspots", "circular"},
	RunE:      runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 0, "minimum metric value to report")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "maximum results (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "table", "output format: table or json")
}

// nodeMetrics pairs a node with its coupling measures for ranked reports.
type nodeMetrics struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	graph.ComplexityMetrics
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	g, err := openGraph()
	if err != nil {
		return err
	}

	limit := analyzeLimit
	if limit <= 0 {
		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		limit = cfg.Query.HotspotLimit
	}

	switch args[0] {
	case "complexity":
		return analyzeRanked(g, limit, func(m nodeMetrics) int { return m.Cyclomatic }, "CYCLOMATIC")
	case "coupling":
		return analyzeRanked(g, limit, func(m nodeMetrics) int { return m.FanIn + m.FanOut }, "COUPLING")
	case "hotspots":
		return analyzeHotspots(g, limit)
	case "circular":
		return analyzeCircular(g)
	default:
		return fmt.Errorf("unknown analysis %q (expected complexity, coupling, hotspots, or circular)", args[0])
	}
}

func analyzeRanked(g *graph.Graph, limit int, metric func(nodeMetrics) int, header string) error {
	all := make([]nodeMetrics, 0, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		m := nodeMetrics{
			Name:              n.Name,
			FilePath:          n.FilePath,
			Line:              n.Line,
			ComplexityMetrics: g.Complexity(n.ID),
		}
		if metric(m) < analyzeThreshold {
			continue
		}
		all = append(all, m)
	}

	sort.Slice(all, func(i, j int) bool {
		if metric(all[i]) != metric(all[j]) {
			return metric(all[i]) > metric(all[j])
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > limit {
		all = all[:limit]
	}

	if analyzeOutput == "json" {
		return printJSON(all)
	}
	if len(all) == 0 {
		info("Nothing above threshold %d", analyzeThreshold)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tFAN-IN\tFAN-OUT\t%s\tLOCATION\n", header)
	for _, m := range all {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s:%d\n", m.Name, m.FanIn, m.FanOut, metric(m), m.FilePath, m.Line)
	}
	w.Flush()
	return nil
}

func analyzeHotspots(g *graph.Graph, limit int) error {
	hotspots := g.FindHotspots(limit)
	if analyzeThreshold > 0 {
		kept := hotspots[:0]
		for _, h := range hotspots {
			if h.CallCount >= analyzeThreshold {
				kept = append(kept, h)
			}
		}
		hotspots = kept
	}

	if analyzeOutput == "json" {
		return printJSON(hotspots)
	}
	if len(hotspots) == 0 {
		info("No hotspots")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCALLS")
	for _, h := range hotspots {
		fmt.Fprintf(w, "%s\t%d\n", h.Name, h.CallCount)
	}
	w.Flush()
	return nil
}

func analyzeCircular(g *graph.Graph) error {
	cycles := g.FindCycles()
	if analyzeOutput == "json" {
		return printJSON(cycles)
	}
	if len(cycles) == 0 {
		info("No circular dependencies")
		return nil
	}
	for _, c := range cycles {
		fmt.Println(formatPath(c))
	}
	info("\n%d cycles found", len(cycles))
	return nil
}
