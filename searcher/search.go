package searcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"file_search_go/db"
	"file_search_go/logger"
	"file_search_go/models"
)

// ErrStoreNotFound is returned when a selector names no known store.
var ErrStoreNotFound = errors.New("store not found")

// SelectAll selects every available store.
const SelectAll = "all"

// Querier runs substring lookups against one record store.
type Querier interface {
	QuerySubstring(ctx context.Context, q db.SubstringQuery) ([]models.SearchResult, error)
}

// Store is a Querier the engine opens and closes itself.
type Store interface {
	Querier
	Close() error
}

// StoreOpener opens the store file at path.
type StoreOpener func(path string) (Store, error)

// OpenStore opens an existing store file, detecting its engine.
func OpenStore(path string) (Store, error) {
	d, err := db.OpenExisting(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// KeywordResults holds the matches for one keyword.
type KeywordResults struct {
	Keyword string
	Results []models.SearchResult
}

// StoreResults holds the matches for one keyword in one store. Store is the
// file name shown to users; Path locates the store file.
type StoreResults struct {
	Store   string
	Path    string
	Keyword string
	Results []models.SearchResult
}

// SearchByKeyword finds records containing keyword, ordered by path and capped
// at cfg.MaxResults, then applies the include and exclude filters to that
// window. A blank keyword returns no results without querying.
func SearchByKeyword(ctx context.Context, q Querier, keyword string, cfg models.SearchConfig) ([]models.SearchResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return []models.SearchResult{}, nil
	}

	fields := db.FieldName
	if cfg.SearchInPath {
		fields = db.FieldNameOrPath
	}

	results, err := q.QuerySubstring(ctx, db.SubstringQuery{
		Fields:        fields,
		Pattern:       keyword,
		CaseSensitive: cfg.CaseSensitive,
		Limit:         cfg.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("error searching for %q: %w", keyword, err)
	}
	return applyFilters(results, cfg), nil
}

// SearchMultipleKeywords searches every keyword independently, in order.
func SearchMultipleKeywords(ctx context.Context, q Querier, keywords []string, cfg models.SearchConfig) ([]KeywordResults, error) {
	all := make([]KeywordResults, 0, len(keywords))
	for _, keyword := range keywords {
		results, err := SearchByKeyword(ctx, q, keyword, cfg)
		if err != nil {
			return nil, err
		}
		all = append(all, KeywordResults{Keyword: keyword, Results: results})
	}
	return all, nil
}

// SearchFromInput parses raw input into keywords and searches each of them.
func SearchFromInput(ctx context.Context, q Querier, input string, cfg models.SearchConfig) ([]KeywordResults, error) {
	keywords := ParseSearchKeywords(input)
	if len(keywords) == 0 {
		return []KeywordResults{}, nil
	}
	return SearchMultipleKeywords(ctx, q, keywords, cfg)
}

// StoreName is the name a store is selected by: its file name.
func StoreName(path string) string {
	return filepath.Base(path)
}

// Engine searches store files by path, opening each one for the duration of
// its queries.
type Engine struct {
	open StoreOpener
}

// NewEngine creates an engine. A nil opener selects OpenStore.
func NewEngine(open StoreOpener) *Engine {
	if open == nil {
		open = OpenStore
	}
	return &Engine{open: open}
}

// SearchMultipleStores searches every store for every keyword. Results come
// back in store order, then keyword order.
func (e *Engine) SearchMultipleStores(ctx context.Context, paths, keywords []string, cfg models.SearchConfig) ([]StoreResults, error) {
	all := make([]StoreResults, 0, len(paths)*len(keywords))
	for _, path := range paths {
		results, err := e.searchStore(ctx, path, keywords, cfg)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// SearchInSelectedStore searches the store whose file name equals selector,
// or every store when selector is SelectAll.
func (e *Engine) SearchInSelectedStore(ctx context.Context, paths []string, selector string, keywords []string, cfg models.SearchConfig) ([]StoreResults, error) {
	if selector == SelectAll {
		return e.SearchMultipleStores(ctx, paths, keywords, cfg)
	}

	idx := slices.IndexFunc(paths, func(p string) bool { return StoreName(p) == selector })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, selector)
	}
	return e.searchStore(ctx, paths[idx], keywords, cfg)
}

func (e *Engine) searchStore(ctx context.Context, path string, keywords []string, cfg models.SearchConfig) ([]StoreResults, error) {
	store, err := e.open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening store %s: %w", path, err)
	}
	defer store.Close()

	name := StoreName(path)
	logger.Debug("searching store", "store", name, "keywords", len(keywords))

	results, err := SearchMultipleKeywords(ctx, store, keywords, cfg)
	if err != nil {
		return nil, fmt.Errorf("error searching store %s: %w", name, err)
	}

	out := make([]StoreResults, 0, len(results))
	for _, kr := range results {
		out = append(out, StoreResults{Store: name, Path: path, Keyword: kr.Keyword, Results: kr.Results})
	}
	return out, nil
}

// MergeByKeyword combines per-store results into one group per keyword, in
// first-seen keyword order. Paths found in several stores appear once and each
// group is re-sorted by path.
func MergeByKeyword(results []StoreResults) []KeywordResults {
	var merged []KeywordResults
	index := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, sr := range results {
		i, ok := index[sr.Keyword]
		if !ok {
			i = len(merged)
			index[sr.Keyword] = i
			merged = append(merged, KeywordResults{Keyword: sr.Keyword, Results: []models.SearchResult{}})
			seen[sr.Keyword] = make(map[string]struct{})
		}
		for _, r := range sr.Results {
			if _, dup := seen[sr.Keyword][r.Path]; dup {
				continue
			}
			seen[sr.Keyword][r.Path] = struct{}{}
			merged[i].Results = append(merged[i].Results, r)
		}
	}

	for i := range merged {
		slices.SortFunc(merged[i].Results, func(a, b models.SearchResult) int {
			return strings.Compare(a.Path, b.Path)
		})
	}
	return merged
}
