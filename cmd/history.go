package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"file_search_go/history"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the search history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete every entry")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.History.Enabled {
		return errors.New("search history is disabled in the configuration")
	}
	h := history.New(appConfig.History.Path, appConfig.History.MaxEntries)
	out := cmd.OutOrStdout()

	if historyClear {
		if err := h.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Search history cleared")
		return nil
	}

	entries, err := h.GetRecent(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No searches recorded"))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s %s %s\n",
			dimStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04")),
			headerStyle.Render(e.Query),
			storeStyle.Render("["+e.SelectedDB+"]"),
			countStyle.Render(fmt.Sprintf("%s results", humanize.Comma(int64(e.ResultCount)))))
	}
	return nil
}
