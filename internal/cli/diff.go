package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/graph"
)

var (
	diffShowAdded           bool
	diffShowRemoved         bool
	diffShowChanged         bool
	diffComplexityThreshold int
	diffOutput              string
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-graph> <new-graph>",
	Short: "Compare two graph snapshots",
	Long: `Diff reports nodes added, removed, and changed between two saved
graphs, plus per-function coupling deltas. Without any --show flag every
section prints:

  codenav diff before.bin after.bin
  codenav diff before.bin after.bin --show-changed --complexity-threshold 3`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffShowAdded, "show-added", false, "only added nodes")
	diffCmd.Flags().BoolVar(&diffShowRemoved, "show-removed", false, "only removed nodes")
	diffCmd.Flags().BoolVar(&diffShowChanged, "show-changed", false, "only changed nodes")
	diffCmd.Flags().IntVar(&diffComplexityThreshold, "complexity-threshold", 0, "minimum absolute coupling delta to report")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "table", "output format: table or json")
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldGraph, err := loadGraph(args[0])
	if err != nil {
		return err
	}
	newGraph, err := loadGraph(args[1])
	if err != nil {
		return err
	}

	diff := oldGraph.Diff(newGraph)

	if diffComplexityThreshold > 0 {
		kept := diff.ComplexityChanges[:0]
		for _, c := range diff.ComplexityChanges {
			delta := c.Change
			if delta < 0 {
				delta = -delta
			}
			if delta >= diffComplexityThreshold {
				kept = append(kept, c)
			}
		}
		diff.ComplexityChanges = kept
	}

	// No --show flag selects everything.
	showAll := !diffShowAdded && !diffShowRemoved && !diffShowChanged
	if !showAll {
		if !diffShowAdded {
			diff.AddedNodes = nil
		}
		if !diffShowRemoved {
			diff.RemovedNodes = nil
		}
		if !diffShowChanged {
			diff.ChangedNodes = nil
			diff.ComplexityChanges = nil
		}
	}

	if diffOutput == "json" {
		return printJSON(diff)
	}
	if diffOutput != "table" {
		return fmt.Errorf("unknown output format %q (expected table or json)", diffOutput)
	}

	printDiffTable(diff)
	return nil
}

func printDiffTable(diff graph.GraphDiff) {
	for _, id := range diff.AddedNodes {
		fmt.Printf("+ %s\n", id)
	}
	for _, id := range diff.RemovedNodes {
		fmt.Printf("- %s\n", id)
	}
	for _, c := range diff.ChangedNodes {
		fmt.Printf("~ %s\n", c.NodeID)
		if c.OldSignature != c.NewSignature {
			fmt.Printf("    signature: %s -> %s\n", c.OldSignature, c.NewSignature)
		}
		if c.OldLine != c.NewLine {
			fmt.Printf("    line: %d -> %d\n", c.OldLine, c.NewLine)
		}
	}

	if len(diff.ComplexityChanges) > 0 {
		fmt.Println("\nCoupling changes:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFAN-IN\tFAN-OUT\tDELTA")
		for _, c := range diff.ComplexityChanges {
			fmt.Fprintf(w, "%s\t%d -> %d\t%d -> %d\t%+d\n",
				c.NodeName, c.OldFanIn, c.NewFanIn, c.OldFanOut, c.NewFanOut, c.Change)
		}
		w.Flush()
	}

	info("\n%d added, %d removed, %d changed (edges: +%d/-%d)",
		len(diff.AddedNodes), len(diff.RemovedNodes), len(diff.ChangedNodes),
		diff.AddedEdgesCount, diff.RemovedEdgesCount)
}
