package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"file_search_go/db"
	"file_search_go/indexer"
	"file_search_go/models"
)

var (
	indexPath       string
	indexDB         string
	indexFull       bool
	indexNoMetadata bool
	indexBatchSize  int
	indexDriver     string
	indexWorkers    int
)

var indexCmd = &cobra.Command{
	Use:     "index",
	Aliases: []string{"i"},
	Short:   "Index the files under a directory",
	Long: `Walks a directory tree in parallel and writes one record per file into a
store file. Existing stores are updated in place; --full rebuilds from scratch.
Directories that cannot be read are skipped and listed after the run.`,
	Example: `  # Index the current directory into ./.fsearch.db
  fsearch index

  # Index a media drive into a named store, paths and names only
  fsearch index --path /mnt/media --db ~/stores/media.fsearch.db --no-metadata

  # Rebuild an existing store using SQLite and small batches
  fsearch index -p /srv/data --full --driver sqlite --batch-size 500`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.StringVarP(&indexPath, "path", "p", "./", "directory to index")
	f.StringVarP(&indexDB, "db", "d", "", "store file (default <path>/.fsearch.db)")
	f.BoolVar(&indexFull, "full", false, "remove the existing store and rebuild it")
	f.BoolVar(&indexNoMetadata, "no-metadata", false, "store only paths and names")
	f.IntVarP(&indexBatchSize, "batch-size", "b", 0, "records per transaction (default from config)")
	f.StringVar(&indexDriver, "driver", "", "engine for new stores: duckdb or sqlite (default from config)")
	f.IntVar(&indexWorkers, "workers", 0, "concurrent scanner goroutines (default from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(indexPath)
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("%w: %s", indexer.ErrPathNotFound, root)
	}

	dbPath := indexDB
	if dbPath == "" {
		dbPath = filepath.Join(root, appConfig.Store.DefaultName)
	}
	driver := orDefault(indexDriver, appConfig.Store.Driver)
	opts := indexer.Options{
		BatchSize:    orDefaultInt(indexBatchSize, appConfig.Index.BatchSize),
		WithMetadata: appConfig.Index.WithMetadata && !indexNoMetadata,
		Workers:      orDefaultInt(indexWorkers, appConfig.Index.Workers),
		Progress:     progressFor(cmd),
	}

	store, err := db.OpenForIndexing(driver, dbPath, indexFull)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("Indexing "+root))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("store %s (%s), batch size %d, metadata %t",
		dbPath, store.Driver(), opts.BatchSize, opts.WithMetadata)))

	result, err := indexer.NewIndexer(store, opts).IndexDirectory(cmd.Context(), root)
	if err != nil {
		return err
	}
	if err := store.MarkIndexed(root); err != nil {
		return err
	}

	printIndexSummary(cmd, result)
	return nil
}

func progressFor(cmd *cobra.Command) indexer.Progress {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return indexer.NewTerminalProgress(f, "indexing")
	}
	return indexer.NoopProgress{}
}

func printIndexSummary(cmd *cobra.Command, result *models.IndexResult) {
	out := cmd.OutOrStdout()
	secs := result.Duration.Seconds()
	rate := 0.0
	if secs > 0 {
		rate = float64(result.Records) / secs
	}

	fmt.Fprintln(out, countStyle.Render(fmt.Sprintf("Indexed %s files in %s (%s files/s)",
		humanize.Comma(result.Records), result.Duration.Round(time.Millisecond), humanize.CommafWithDigits(rate, 0))))

	if len(result.SkippedPaths) == 0 {
		return
	}
	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, warnStyle.Render(fmt.Sprintf("Skipped %d unreadable directories:", len(result.SkippedPaths))))
	for _, p := range result.SkippedPaths {
		fmt.Fprintln(errOut, "  "+p)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
