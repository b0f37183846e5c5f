package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/graph"
)

var (
	queryName    string
	queryType    string
	queryPackage string
	queryFile    string
	queryCount   bool
	queryLimit   int
	queryOutput  string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Find nodes matching name, type, package, or file filters",
	Long: `Query lists graph nodes passing every supplied filter.

The --name filter matches exactly, or as a glob when it contains a wildcard:

  codenav query --name main
  codenav query --name 'Handle*' --type function
  codenav query --package api --count`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryName, "name", "n", "", "node name, glob patterns allowed")
	queryCmd.Flags().StringVarP(&queryType, "type", "t", "", "node type: function, method, http_handler, middleware")
	queryCmd.Flags().StringVarP(&queryPackage, "package", "p", "", "package name")
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "file path substring")
	queryCmd.Flags().BoolVarP(&queryCount, "count", "c", false, "print only the match count")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results (0 = unlimited)")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "table", "output format: table or json")
}

func runQuery(cmd *cobra.Command, args []string) error {
	g, err := openGraph()
	if err != nil {
		return err
	}

	matches, err := matchNodes(g)
	if err != nil {
		return err
	}

	if queryCount {
		fmt.Println(len(matches))
		return nil
	}
	if queryLimit > 0 && len(matches) > queryLimit {
		matches = matches[:queryLimit]
	}

	switch queryOutput {
	case "json":
		return printJSON(matches)
	case "table":
		printNodeTable(matches)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", queryOutput)
	}
}

// matchNodes narrows the node set using the cheapest available index first,
// then applies the remaining filters linearly.
func matchNodes(g *graph.Graph) ([]*graph.Node, error) {
	var nameGlob glob.Glob
	if strings.ContainsAny(queryName, "*?[") {
		var err error
		nameGlob, err = glob.Compile(queryName)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern %q: %w", queryName, err)
		}
	}

	var candidates []*graph.Node
	switch {
	case queryName != "" && nameGlob == nil:
		candidates = g.GetNodesByName(queryName)
	case queryType != "":
		candidates = g.GetNodesByType(graph.NodeType(queryType))
	default:
		candidates = make([]*graph.Node, 0, len(g.Nodes))
		for i := range g.Nodes {
			candidates = append(candidates, &g.Nodes[i])
		}
	}

	var matches []*graph.Node
	for _, n := range candidates {
		if nameGlob != nil && !nameGlob.Match(n.Name) {
			continue
		}
		if queryType != "" && n.Type != graph.NodeType(queryType) {
			continue
		}
		if queryPackage != "" && n.Package != queryPackage {
			continue
		}
		if queryFile != "" && !strings.Contains(n.FilePath, queryFile) {
			continue
		}
		matches = append(matches, n)
	}
	return matches, nil
}

func printNodeTable(nodes []*graph.Node) {
	if len(nodes) == 0 {
		info("No matches")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tPACKAGE\tLOCATION")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s:%d\n", n.Name, n.Type, n.Package, n.FilePath, n.Line)
	}
	w.Flush()
	info("\n%d matches", len(nodes))
}
