package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"file_search_go/db"
	"file_search_go/export"
	"file_search_go/history"
	"file_search_go/logger"
	"file_search_go/models"
	"file_search_go/searcher"
)

var (
	searchDBs           []string
	searchSelect        string
	searchLimit         int
	searchTree          bool
	searchNameOnly      bool
	searchCaseSensitive bool
	searchInclude       []string
	searchExclude       []string
	searchRootName      string
	searchRootPath      string
	searchExport        string
)

var searchCmd = &cobra.Command{
	Use:     "search [keywords...]",
	Aliases: []string{"s"},
	Short:   "Search stores by keyword",
	Long: `Searches one or more stores for files whose name (or path) contains each
keyword. Keywords are separated by spaces, commas, semicolons or tabs and are
searched independently. Without keywords an interactive prompt is started;
enter :q, exit or quit to leave it.`,
	Example: `  # Search every store in the current directory
  fsearch search report

  # Two keywords in one store, shown as trees
  fsearch search "summer; winter" --db ~/stores --select-db photos.fsearch.db --tree

  # Only jpg files, never anything under a cache directory
  fsearch s holiday --include jpg --exclude cache

  # Write the results to a TOML file
  fsearch search invoice --export invoices.toml`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringSliceVarP(&searchDBs, "db", "d", []string{"."}, "store files or directories holding them")
	f.StringVarP(&searchSelect, "select-db", "s", "", `store file name to search, or "all" (default from config)`)
	f.IntVarP(&searchLimit, "limit", "l", 0, "maximum results per keyword and store (default from config)")
	f.BoolVarP(&searchTree, "tree", "t", false, "show results as a directory tree")
	f.BoolVarP(&searchNameOnly, "name-only", "n", false, "match file names only, not full paths")
	f.BoolVarP(&searchCaseSensitive, "case-sensitive", "c", false, "match case exactly")
	f.StringSliceVarP(&searchInclude, "include", "i", nil, "keep only results containing every filter")
	f.StringSliceVarP(&searchExclude, "exclude", "e", nil, "drop results containing any filter")
	f.StringVarP(&searchRootName, "root-name", "r", "", "label of the tree root (default from config)")
	f.StringVar(&searchRootPath, "root-path", "", "replace the root of every result path before display")
	f.StringVarP(&searchExport, "export", "o", "", "write the results to a TOML file")
	rootCmd.AddCommand(searchCmd)
}

// searchSession holds what stays fixed between queries of one invocation.
type searchSession struct {
	stores   []string
	selector string
	cfg      models.SearchConfig
	engine   *searcher.Engine
	history  *history.History
}

func newSearchSession(cmd *cobra.Command) (*searchSession, error) {
	stores := db.DiscoverStores(searchDBs, appConfig.Store.Suffix)
	if len(stores) == 0 {
		return nil, fmt.Errorf("no store files found in %s", strings.Join(searchDBs, ", "))
	}

	cfg := appConfig.SearchOptions()
	if searchLimit > 0 {
		cfg.MaxResults = searchLimit
	}
	if cmd.Flags().Changed("name-only") {
		cfg.SearchInPath = !searchNameOnly
	}
	if cmd.Flags().Changed("case-sensitive") {
		cfg.CaseSensitive = searchCaseSensitive
	}
	cfg.IncludeFilters = searchInclude
	cfg.ExcludeFilters = searchExclude

	s := &searchSession{
		stores:   stores,
		selector: orDefault(searchSelect, appConfig.Search.Selector),
		cfg:      cfg,
		engine:   searcher.NewEngine(nil),
	}
	if appConfig.History.Enabled {
		s.history = history.New(appConfig.History.Path, appConfig.History.MaxEntries)
	}
	return s, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	session, err := newSearchSession(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return session.run(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
	}
	return session.interactive(cmd)
}

// run searches input and prints the results grouped by store, then keyword.
func (s *searchSession) run(ctx context.Context, w io.Writer, input string) error {
	keywords := searcher.ParseSearchKeywords(input)
	if len(keywords) == 0 {
		return errors.New("no keywords given")
	}

	results, err := s.engine.SearchInSelectedStore(ctx, s.stores, s.selector, keywords, s.cfg)
	if err != nil {
		return err
	}

	total := 0
	for _, sr := range results {
		printResults(w, sr, searcher.RemapRoot(sr.Results, searchRootPath))
		total += len(sr.Results)
	}
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d results in %d stores", total, countStores(results))))

	s.record(input, total)

	if searchExport != "" {
		if err := s.export(ctx, input, results); err != nil {
			return err
		}
		fmt.Fprintln(w, "Exported to "+searchExport)
	}
	return nil
}

func printResults(w io.Writer, sr searcher.StoreResults, results []models.SearchResult) {
	fmt.Fprintf(w, "%s %s %s\n",
		storeStyle.Render("["+sr.Store+"]"),
		headerStyle.Render(sr.Keyword),
		countStyle.Render(fmt.Sprintf("(%d)", len(results))))

	switch {
	case len(results) == 0:
		fmt.Fprintln(w, dimStyle.Render("  no results"))
	case searchTree:
		searcher.PrintTree(w, searcher.BuildTree(results, orDefault(searchRootName, appConfig.Search.RootLabel)))
	default:
		for i, r := range results {
			fmt.Fprintf(w, "%4d. %s\n", i+1, r.Path)
		}
	}
	fmt.Fprintln(w)
}

func countStores(results []searcher.StoreResults) int {
	seen := make(map[string]struct{})
	for _, sr := range results {
		seen[sr.Path] = struct{}{}
	}
	return len(seen)
}

func (s *searchSession) record(input string, total int) {
	if s.history == nil {
		return
	}
	_, err := s.history.Add(history.Entry{
		Query:         input,
		SelectedDB:    s.selector,
		ResultCount:   total,
		NameOnly:      !s.cfg.SearchInPath,
		CaseSensitive: s.cfg.CaseSensitive,
	})
	if err != nil {
		logger.Warn("cannot record search history", "err", err)
	}
}

// export writes results merged per keyword, with size and modification time
// looked up in the store each result came from.
func (s *searchSession) export(ctx context.Context, input string, results []searcher.StoreResults) error {
	records, err := s.lookupRecords(ctx, results)
	if err != nil {
		return err
	}

	exp := export.New(export.SearchParams{
		Query:          input,
		SelectedDB:     s.selector,
		NameOnly:       !s.cfg.SearchInPath,
		CaseSensitive:  s.cfg.CaseSensitive,
		Limit:          s.cfg.MaxResults,
		IncludeFilters: s.cfg.IncludeFilters,
		ExcludeFilters: s.cfg.ExcludeFilters,
	})
	for _, group := range searcher.MergeByKeyword(results) {
		files := make([]export.FileEntry, 0, len(group.Results))
		for _, r := range group.Results {
			files = append(files, export.NewFileEntry(r.Path, records[r.Path]))
		}
		exp.AddKeywordGroup(group.Keyword, files)
	}
	return exp.ExportToFile(searchExport)
}

func (s *searchSession) lookupRecords(ctx context.Context, results []searcher.StoreResults) (map[string]*models.FileRecord, error) {
	wanted := make(map[string][]string)
	var order []string
	for _, sr := range results {
		if len(sr.Results) == 0 {
			continue
		}
		if _, ok := wanted[sr.Path]; !ok {
			order = append(order, sr.Path)
		}
		for _, r := range sr.Results {
			wanted[sr.Path] = append(wanted[sr.Path], r.Path)
		}
	}

	records := make(map[string]*models.FileRecord)
	for _, storePath := range order {
		if err := lookupInStore(ctx, storePath, wanted[storePath], records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func lookupInStore(ctx context.Context, storePath string, paths []string, into map[string]*models.FileRecord) error {
	store, err := db.OpenExisting(storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, p := range paths {
		if _, done := into[p]; done {
			continue
		}
		rec, err := store.GetFile(ctx, p)
		if err != nil {
			return err
		}
		if rec != nil {
			into[p] = rec
		}
	}
	return nil
}

// interactive reads queries from a prompt until the user leaves.
func (s *searchSession) interactive(cmd *cobra.Command) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Searching %d stores", len(s.stores))))
	fmt.Fprintln(out, dimStyle.Render("Enter keywords, or :q to quit"))

	for {
		input, err := line.Prompt("search> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("error reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case ":q", "exit", "quit":
			return nil
		}
		line.AppendHistory(input)

		if err := s.run(cmd.Context(), out, input); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("search failed: "+err.Error()))
		}
	}
}
