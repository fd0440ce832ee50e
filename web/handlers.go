package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"file_search_go/db"
	"file_search_go/export"
	"file_search_go/history"
	"file_search_go/indexer"
	"file_search_go/logger"
	"file_search_go/models"
	"file_search_go/searcher"
)

// noResultsLabel names the placeholder tree of a keyword without matches.
const noResultsLabel = "No results"

var (
	errNoStores        = errors.New("no stores available")
	errHistoryDisabled = errors.New("search history is disabled")
	errStoreSuffix     = errors.New("db_path must end with the store suffix")
)

// searchRequest holds the query parameters of a search.
type searchRequest struct {
	Query          string
	SelectedDB     string
	Limit          int
	NameOnly       bool
	CaseSensitive  bool
	IncludeFilters []string
	ExcludeFilters []string
	RootPath       string
}

type searchResponse struct {
	Success bool             `json:"success"`
	Results []keywordResults `json:"results"`
	Error   string           `json:"error,omitempty"`
}

type keywordResults struct {
	Keyword string   `json:"keyword"`
	Count   int      `json:"count"`
	Tree    treeJSON `json:"tree"`
}

type treeJSON struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	IsLeaf   bool       `json:"is_leaf"`
	Children []treeJSON `json:"children"`
}

func newTreeJSON(n *searcher.TreeNode) treeJSON {
	t := treeJSON{Name: n.Name, Path: n.Path, IsLeaf: n.IsLeaf(), Children: make([]treeJSON, 0, len(n.Children))}
	for _, c := range n.Children {
		t.Children = append(t.Children, newTreeJSON(c))
	}
	return t
}

type indexRequest struct {
	RootPath     string `json:"root_path"`
	DBPath       string `json:"db_path"`
	BatchSize    int    `json:"batch_size"`
	WithMetadata bool   `json:"with_metadata"`
	Incremental  bool   `json:"incremental"`
}

type indexResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	DurationSecs *float64 `json:"duration_secs,omitempty"`
	Records      int64    `json:"records,omitempty"`
	SkippedPaths []string `json:"skipped_paths"`
	Error        string   `json:"error,omitempty"`
}

type databaseInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) parseSearchRequest(r *http.Request) searchRequest {
	q := r.URL.Query()
	req := searchRequest{
		Query:          q.Get("query"),
		SelectedDB:     q.Get("selected_db"),
		Limit:          s.cfg.App.Search.Limit,
		NameOnly:       parseBool(q.Get("name_only")),
		CaseSensitive:  parseBool(q.Get("case_sensitive")),
		IncludeFilters: searcher.ParseSearchKeywords(q.Get("include_filters")),
		ExcludeFilters: searcher.ParseSearchKeywords(q.Get("exclude_filters")),
		RootPath:       q.Get("root_path"),
	}
	if req.SelectedDB == "" {
		req.SelectedDB = s.cfg.App.Search.Selector
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		req.Limit = n
	}
	return req
}

func parseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func (req searchRequest) config() models.SearchConfig {
	return models.SearchConfig{
		MaxResults:     req.Limit,
		SearchInPath:   !req.NameOnly,
		CaseSensitive:  req.CaseSensitive,
		IncludeFilters: req.IncludeFilters,
		ExcludeFilters: req.ExcludeFilters,
	}
}

// search runs req against the selected stores and returns one tree per
// keyword, merged across stores.
func (s *Server) search(ctx context.Context, req searchRequest) ([]export.KeywordTree, []int, error) {
	paths := s.cfg.Stores.Paths()
	if len(paths) == 0 {
		return nil, nil, errNoStores
	}

	keywords := searcher.ParseSearchKeywords(req.Query)
	perStore, err := s.engine.SearchInSelectedStore(ctx, paths, req.SelectedDB, keywords, req.config())
	if err != nil {
		return nil, nil, err
	}

	merged := searcher.MergeByKeyword(perStore)
	trees := make([]export.KeywordTree, 0, len(merged))
	counts := make([]int, 0, len(merged))
	for _, kr := range merged {
		results := searcher.RemapRoot(kr.Results, req.RootPath)
		tree := searcher.NewTreeNode(noResultsLabel, "")
		if len(results) > 0 {
			tree = searcher.BuildTree(results, kr.Keyword)
		}
		trees = append(trees, export.KeywordTree{Keyword: kr.Keyword, Tree: tree})
		counts = append(counts, len(results))
	}
	return trees, counts, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := s.parseSearchRequest(r)

	trees, counts, err := s.search(r.Context(), req)
	s.metrics.searches.WithLabelValues(outcome(err)).Inc()
	s.metrics.searchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		writeJSON(w, http.StatusOK, searchResponse{Success: false, Results: []keywordResults{}, Error: "search failed: " + err.Error()})
		return
	}

	resp := searchResponse{Success: true, Results: make([]keywordResults, 0, len(trees))}
	total := 0
	for i, kt := range trees {
		resp.Results = append(resp.Results, keywordResults{Keyword: kt.Keyword, Count: counts[i], Tree: newTreeJSON(kt.Tree)})
		total += counts[i]
	}
	s.recordHistory(req, total)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordHistory(req searchRequest, total int) {
	if s.cfg.History == nil || len(searcher.ParseSearchKeywords(req.Query)) == 0 {
		return
	}
	_, err := s.cfg.History.Add(history.Entry{
		Query:         req.Query,
		SelectedDB:    req.SelectedDB,
		ResultCount:   total,
		NameOnly:      req.NameOnly,
		CaseSensitive: req.CaseSensitive,
	})
	if err != nil {
		logger.Warn("cannot record search history", "err", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req := s.parseSearchRequest(r)

	trees, _, err := s.search(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	exp := export.ConvertFromTrees(export.SearchParams{
		Query:          req.Query,
		SelectedDB:     req.SelectedDB,
		NameOnly:       req.NameOnly,
		CaseSensitive:  req.CaseSensitive,
		Limit:          req.Limit,
		IncludeFilters: req.IncludeFilters,
		ExcludeFilters: req.ExcludeFilters,
	}, trees)
	doc, err := exp.ToTOML()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/toml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="search_results.toml"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req := indexRequest{BatchSize: s.cfg.App.Index.BatchSize}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, indexResponse{SkippedPaths: []string{}, Error: "invalid request: " + err.Error()})
		return
	}
	if req.RootPath == "" || req.DBPath == "" {
		writeJSON(w, http.StatusBadRequest, indexResponse{SkippedPaths: []string{}, Error: "root_path and db_path are required"})
		return
	}

	if !s.indexing.TryLock() {
		writeJSON(w, http.StatusConflict, indexResponse{SkippedPaths: []string{}, Error: "an indexing run is already in progress"})
		return
	}
	defer s.indexing.Unlock()

	result, err := s.runIndex(r.Context(), req)
	s.metrics.indexRuns.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, indexer.ErrPathNotFound) || errors.Is(err, errStoreSuffix) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, indexResponse{SkippedPaths: []string{}, Error: err.Error()})
		return
	}
	s.metrics.indexedRecords.Add(float64(result.Records))

	secs := result.Duration.Seconds()
	writeJSON(w, http.StatusOK, indexResponse{
		Success:      true,
		Message:      "Indexing completed successfully",
		DurationSecs: &secs,
		Records:      result.Records,
		SkippedPaths: result.SkippedPaths,
	})
}

func (s *Server) runIndex(ctx context.Context, req indexRequest) (*models.IndexResult, error) {
	root, err := filepath.Abs(req.RootPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", indexer.ErrPathNotFound, root)
	}
	dbPath, err := filepath.Abs(req.DBPath)
	if err != nil {
		return nil, err
	}
	// stores without the suffix are never discovered, so they could not be searched
	if suffix := s.cfg.App.Store.Suffix; !strings.HasSuffix(filepath.Base(dbPath), suffix) {
		return nil, fmt.Errorf("%w %q: %s", errStoreSuffix, suffix, req.DBPath)
	}

	store, err := db.OpenForIndexing(s.cfg.App.Store.Driver, dbPath, !req.Incremental)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ix := indexer.NewIndexer(store, indexer.Options{
		BatchSize:    req.BatchSize,
		WithMetadata: req.WithMetadata,
		Workers:      s.cfg.App.Index.Workers,
	})
	result, err := ix.IndexDirectory(ctx, root)
	if err != nil {
		return nil, err
	}

	if err := store.MarkIndexed(root); err != nil {
		return nil, err
	}
	s.cfg.Stores.Include(dbPath)
	return result, nil
}

func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	paths := s.cfg.Stores.Paths()
	dbs := make([]databaseInfo, 0, len(paths))
	for _, p := range paths {
		dbs = append(dbs, databaseInfo{Name: searcher.StoreName(p), Path: p})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "databases": dbs})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.History == nil {
		writeError(w, http.StatusNotFound, errHistoryDisabled)
		return
	}

	limit := -1
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n >= 0 {
		limit = n
	}
	entries, err := s.cfg.History.GetRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.History == nil {
		writeError(w, http.StatusNotFound, errHistoryDisabled)
		return
	}
	if err := s.cfg.History.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.History == nil {
		writeError(w, http.StatusNotFound, errHistoryDisabled)
		return
	}
	err := s.cfg.History.Remove(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, history.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("error encoding response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}
