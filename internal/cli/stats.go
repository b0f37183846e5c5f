package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph metadata and aggregate counts",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := openGraph()
	if err != nil {
		return err
	}

	if statsJSON {
		return printJSON(g.Metadata)
	}

	m := g.Metadata
	fmt.Printf("Language:     %s\n", m.Language)
	fmt.Printf("Root:         %s\n", m.RootPath)
	fmt.Printf("Generated:    %s by %s (format %s)\n", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"), m.Generator, m.Version)
	if m.GitCommitHash != "" {
		fmt.Printf("Commit:       %s\n", m.GitCommitHash)
	}
	fmt.Printf("Nodes:        %d\n", m.Stats.TotalNodes)
	fmt.Printf("Edges:        %d\n", m.Stats.TotalEdges)
	fmt.Printf("Files parsed: %d\n", m.Stats.FilesParsed)
	fmt.Printf("Files tracked: %d\n", len(m.FileMetadata))
	return nil
}
