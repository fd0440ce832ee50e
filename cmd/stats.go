package cmd

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"file_search_go/db"
	"file_search_go/searcher"
)

var (
	statsDBs   []string
	statsTypes int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for stores",
	Example: `  fsearch stats --db ~/stores
  fsearch stats --db media.fsearch.db --types 20`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringSliceVarP(&statsDBs, "db", "d", []string{"."}, "store files or directories holding them")
	statsCmd.Flags().IntVar(&statsTypes, "types", 10, "number of file types to list")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	stores := db.DiscoverStores(statsDBs, appConfig.Store.Suffix)
	if len(stores) == 0 {
		return fmt.Errorf("no store files found in %s", strings.Join(statsDBs, ", "))
	}

	out := cmd.OutOrStdout()
	for _, path := range stores {
		store, err := db.OpenExisting(path)
		if err != nil {
			return err
		}
		stats, err := store.GetStats(cmd.Context())
		store.Close()
		if err != nil {
			return err
		}
		printStats(out, path, store.Driver(), stats)
	}
	return nil
}

func printStats(w io.Writer, path, driver string, stats *db.Stats) {
	fmt.Fprintf(w, "%s %s\n", storeStyle.Render("["+searcher.StoreName(path)+"]"), dimStyle.Render(path))
	fmt.Fprintf(w, "  Engine:       %s\n", driver)
	fmt.Fprintf(w, "  Total files:  %s\n", humanize.Comma(stats.TotalFiles))
	fmt.Fprintf(w, "  Total size:   %s\n", humanize.Bytes(uint64(max(stats.TotalSize, 0))))
	if !stats.IndexedTime.IsZero() {
		fmt.Fprintf(w, "  Indexed:      %s (%s)\n", stats.IndexedTime.Format("2006-01-02 15:04:05"), humanize.Time(stats.IndexedTime))
	}
	if stats.RootPath != "" {
		fmt.Fprintf(w, "  Root path:    %s\n", stats.RootPath)
	}

	types := make([]string, 0, len(stats.FileTypes))
	for ext := range stats.FileTypes {
		types = append(types, ext)
	}
	slices.SortFunc(types, func(a, b string) int {
		if c := cmp.Compare(stats.FileTypes[b], stats.FileTypes[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(types) > 0 {
		fmt.Fprintln(w, "  File types:")
		for _, ext := range types[:min(statsTypes, len(types))] {
			fmt.Fprintf(w, "    %-14s %s\n", ext, humanize.Comma(int64(stats.FileTypes[ext])))
		}
	}
	fmt.Fprintln(w)
}
