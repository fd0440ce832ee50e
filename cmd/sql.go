package cmd

import (
	"github.com/spf13/cobra"

	"file_search_go/db"
)

var sqlDB string

var sqlCmd = &cobra.Command{
	Use:   "sql QUERY",
	Short: "Run a SQL query against a store",
	Long: `Runs a query against the files and metadata tables of a store and prints
the rows. The files table has the columns path, name, mtime and size.`,
	Example: `  fsearch sql "SELECT name, size FROM files WHERE size > 1000000 ORDER BY size DESC LIMIT 10"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.OpenExisting(orDefault(sqlDB, appConfig.Store.DefaultName))
		if err != nil {
			return err
		}
		defer store.Close()
		return store.ExecuteSQL(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	sqlCmd.Flags().StringVarP(&sqlDB, "db", "d", "", "store file (default ./.fsearch.db)")
	rootCmd.AddCommand(sqlCmd)
}
