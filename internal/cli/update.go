package cli

import (
	"github.com/spf13/cobra"

	"github.com/mvp-joe/codenav/internal/config"
	"github.com/mvp-joe/codenav/internal/git"
	"github.com/mvp-joe/codenav/internal/parser"
)

var updateCmd = &cobra.Command{
	Use:   "update [directory]",
	Short: "Incrementally update an existing graph",
	Long: `Update is shorthand for "index --incremental": it reparses only the
files that changed since the graph was built, using git when available and
modification times otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
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
	output := cfg.GraphPath(root)
	if graphFile != "" {
		output = graphFile
	}

	fp, err := parser.New(cfg.Language)
	if err != nil {
		return err
	}

	g, err := incrementalIndex(root, output, fp, git.NewOperations(), cfg.Paths.Ignore)
	if err != nil {
		return err
	}
	if err := saveGraph(g, output); err != nil {
		return err
	}
	info("Graph saved to %s (%d nodes, %d edges)", output, len(g.Nodes), len(g.Edges))
	return nil
}
