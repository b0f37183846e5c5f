package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	callersCount     bool
	callersOutput    string
	callersShowLines bool
)

var callersCmd = &cobra.Command{
	Use:   "callers <function>",
	Short: "List every call site targeting a function",
	Long: `Callers answers "who calls this?" by scanning incoming edges for the
given name. Call targets are names, so all same-named functions match:

  codenav callers ProcessOrder
  codenav callers Validate --show-lines`,
	Args: cobra.ExactArgs(1),
	RunE: runCallers,
}

func init() {
	rootCmd.AddCommand(callersCmd)
	callersCmd.Flags().BoolVarP(&callersCount, "count", "c", false, "print only the caller count")
	callersCmd.Flags().StringVarP(&callersOutput, "output", "o", "table", "output format: table or json")
	callersCmd.Flags().BoolVar(&callersShowLines, "show-lines", false, "include file:line for each call site")
}

type callerInfo struct {
	Caller   string `json:"caller"`
	CallSite string `json:"call_site"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

func runCallers(cmd *cobra.Command, args []string) error {
	target := args[0]

	g, err := openGraph()
	if err != nil {
		return err
	}

	edges := g.FindCallers(target)
	if callersCount {
		fmt.Println(len(edges))
		return nil
	}

	callers := make([]callerInfo, 0, len(edges))
	for _, e := range edges {
		name := e.From
		if n := g.GetNodeByID(e.From); n != nil {
			name = n.Name
		}
		callers = append(callers, callerInfo{
			Caller:   name,
			CallSite: e.CallSite,
			FilePath: e.FilePath,
			Line:     e.Line,
		})
	}

	switch callersOutput {
	case "json":
		return printJSON(callers)
	case "table":
		if len(callers) == 0 {
			info("No callers of %s", target)
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		if callersShowLines {
			fmt.Fprintln(w, "CALLER\tCALL SITE\tLOCATION")
			for _, c := range callers {
				fmt.Fprintf(w, "%s\t%s\t%s:%d\n", c.Caller, c.CallSite, c.FilePath, c.Line)
			}
		} else {
			fmt.Fprintln(w, "CALLER\tCALL SITE")
			for _, c := range callers {
				fmt.Fprintf(w, "%s\t%s\n", c.Caller, c.CallSite)
			}
		}
		w.Flush()
		info("\n%d callers", len(callers))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", callersOutput)
	}
}
