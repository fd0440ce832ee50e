package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file_search_go/config"
	"file_search_go/db"
	"file_search_go/history"
	"file_search_go/models"
)

func createStore(t *testing.T, path string, records ...models.FileRecord) {
	t.Helper()
	store, err := db.Create("sqlite", path)
	require.NoError(t, err)
	require.NoError(t, store.UpsertFiles(context.Background(), records))
	require.NoError(t, store.Close())
}

// newTestServer serves two stores from one directory.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	createStore(t, filepath.Join(dir, "photos.fsearch.db"),
		models.NewFileRecord("/data/photos/2023/summer.jpg", "summer.jpg"),
		models.NewFileRecord("/data/photos/2023/winter.jpg", "winter.jpg"),
	)
	createStore(t, filepath.Join(dir, "media.fsearch.db"),
		models.NewFileRecord("/data/videos/summer_vacation.mp4", "summer_vacation.mp4"),
		models.NewFileRecord("/data/photos/2023/summer.jpg", "summer.jpg"),
	)

	app := config.Default()
	app.Store.Driver = config.DriverSQLite
	srv := New(Config{
		App:     app,
		Stores:  NewStoreSet([]string{dir}, app.Store.Suffix),
		History: history.New(filepath.Join(t.TempDir(), "history.json"), 10),
	})
	return srv, dir
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeSearch(t *testing.T, rec *httptest.ResponseRecorder) searchResponse {
	t.Helper()
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSearch_MergesStores(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/search?query=summer+nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSearch(t, rec)

	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.Results, 2)

	summer := resp.Results[0]
	assert.Equal(t, "summer", summer.Keyword)
	assert.Equal(t, 2, summer.Count)
	assert.Equal(t, "summer (/data)", summer.Tree.Name)
	assert.False(t, summer.Tree.IsLeaf)

	empty := resp.Results[1]
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, noResultsLabel, empty.Tree.Name)
	assert.True(t, empty.Tree.IsLeaf)
}

func TestSearch_SelectedStoreAndFilters(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := decodeSearch(t, get(t, srv, "/api/search?query=summer&selected_db=photos.fsearch.db"))
	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Results[0].Count)

	resp = decodeSearch(t, get(t, srv, "/api/search?query=summer&exclude_filters=jpg"))
	require.True(t, resp.Success)
	assert.Equal(t, 1, resp.Results[0].Count)

	resp = decodeSearch(t, get(t, srv, "/api/search?query=summer&selected_db=missing.fsearch.db"))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "store not found")
}

func TestSearch_RootRemap(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := decodeSearch(t, get(t, srv, "/api/search?query=winter&root_path="+url.QueryEscape("/mnt/backup")))

	require.True(t, resp.Success)
	assert.Equal(t, "winter (/mnt/backup/photos/2023)", resp.Results[0].Tree.Name)
}

func TestSearch_RecordsHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	get(t, srv, "/api/search?query=summer")

	rec := get(t, srv, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		History []history.Entry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.History, 1)
	assert.Equal(t, "summer", body.History[0].Query)
	assert.Equal(t, 2, body.History[0].ResultCount)

	del := httptest.NewRecorder()
	srv.Router().ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/history/"+body.History[0].ID, nil))
	assert.Equal(t, http.StatusOK, del.Code)

	del = httptest.NewRecorder()
	srv.Router().ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/history/"+body.History[0].ID, nil))
	assert.Equal(t, http.StatusNotFound, del.Code)
}

func TestDatabases(t *testing.T) {
	srv, dir := newTestServer(t)

	rec := get(t, srv, "/api/databases")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Databases []databaseInfo `json:"databases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.ElementsMatch(t, []databaseInfo{
		{Name: "media.fsearch.db", Path: filepath.Join(dir, "media.fsearch.db")},
		{Name: "photos.fsearch.db", Path: filepath.Join(dir, "photos.fsearch.db")},
	}, body.Databases)
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/api/export?query=summer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "search_results.toml")

	var doc struct {
		Results []struct {
			Keyword string `toml:"keyword"`
			Count   int    `toml:"count"`
		} `toml:"results"`
	}
	require.NoError(t, toml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Results, 1)
	assert.Equal(t, 2, doc.Results[0].Count)
}

func postIndex(t *testing.T, srv *Server, body any) (*httptest.ResponseRecorder, indexResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/index", bytes.NewReader(data)))
	var resp indexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestIndex(t *testing.T) {
	srv, dir := newTestServer(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes_summer.txt"), []byte("hello"), 0o644))
	dbPath := filepath.Join(dir, "notes.fsearch.db")

	rec, resp := postIndex(t, srv, map[string]any{"root_path": root, "db_path": dbPath, "with_metadata": true})

	require.Equal(t, http.StatusOK, rec.Code, resp.Error)
	assert.True(t, resp.Success)
	assert.EqualValues(t, 1, resp.Records)
	require.NotNil(t, resp.DurationSecs)
	assert.Empty(t, resp.SkippedPaths)

	// the new store is searchable right away
	search := decodeSearch(t, get(t, srv, "/api/search?query=notes_summer"))
	require.True(t, search.Success)
	assert.Equal(t, 1, search.Results[0].Count)
}

func TestIndex_Errors(t *testing.T) {
	srv, dir := newTestServer(t)

	rec, resp := postIndex(t, srv, map[string]any{"root_path": "", "db_path": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)

	rec, resp = postIndex(t, srv, map[string]any{
		"root_path": "/nonexistent/path/xyz",
		"db_path":   filepath.Join(dir, "x.fsearch.db"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "does not exist")
}

func TestIndex_RejectsStorePathWithoutSuffix(t *testing.T) {
	srv, dir := newTestServer(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	dbPath := filepath.Join(dir, "notes.db")

	rec, resp := postIndex(t, srv, map[string]any{"root_path": root, "db_path": dbPath})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, ".fsearch.db")
	assert.NoFileExists(t, dbPath)
}

func TestIndex_Busy(t *testing.T) {
	srv, dir := newTestServer(t)
	srv.indexing.Lock()
	defer srv.indexing.Unlock()

	rec, resp := postIndex(t, srv, map[string]any{"root_path": t.TempDir(), "db_path": filepath.Join(dir, "x.fsearch.db")})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	get(t, srv, "/api/search?query=summer")

	rec := get(t, srv, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fsearch_searches_total{status="ok"} 1`)
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/search")
}
