package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"file_search_go/db"
)

var listDB string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every file recorded in a store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.OpenExisting(orDefault(listDB, appConfig.Store.DefaultName))
		if err != nil {
			return err
		}
		defer store.Close()

		files, err := store.ListFiles(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range files {
			line := f.Path
			if f.Size != nil {
				line += dimStyle.Render(" (" + humanize.Bytes(uint64(max(*f.Size, 0))) + ")")
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, countStyle.Render(fmt.Sprintf("%s files", humanize.Comma(int64(len(files))))))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listDB, "db", "d", "", "store file (default ./.fsearch.db)")
	rootCmd.AddCommand(listCmd)
}
