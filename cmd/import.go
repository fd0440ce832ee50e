package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"file_search_go/export"
	"file_search_go/searcher"
)

var importTree bool

var importCmd = &cobra.Command{
	Use:     "import FILE",
	Short:   "Show search results previously exported to TOML",
	Example: `  fsearch import invoices.toml --tree`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := export.ImportFromFile(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("query %q exported %s, %d results",
			exp.SearchParams.Query, exp.Metadata.ExportedAt.Local().Format("2006-01-02 15:04"), exp.Metadata.TotalCount)))
		fmt.Fprintln(out)

		for _, group := range exp.Groups() {
			fmt.Fprintf(out, "%s %s\n", headerStyle.Render(group.Keyword), countStyle.Render(fmt.Sprintf("(%d)", len(group.Results))))
			if importTree {
				searcher.PrintTree(out, searcher.BuildTree(group.Results, group.Keyword))
			} else {
				for i, r := range group.Results {
					fmt.Fprintf(out, "%4d. %s\n", i+1, r.Path)
				}
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importTree, "tree", "t", false, "show results as a directory tree")
	rootCmd.AddCommand(importCmd)
}
