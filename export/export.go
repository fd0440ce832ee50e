// Package export converts search results to and from a TOML document.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"file_search_go/config"
	"file_search_go/models"
	"file_search_go/searcher"
)

// ExportedSearchResults is the exported document.
type ExportedSearchResults struct {
	Metadata     Metadata       `toml:"metadata"`
	SearchParams SearchParams   `toml:"search_params"`
	Results      []KeywordGroup `toml:"results"`
}

// Metadata describes the export itself.
type Metadata struct {
	ExportedAt time.Time `toml:"exported_at"`
	Version    string    `toml:"version"`
	TotalCount int       `toml:"total_count"`
}

// SearchParams records the search that produced the results.
type SearchParams struct {
	Query          string   `toml:"query"`
	SelectedDB     string   `toml:"selected_db"`
	NameOnly       bool     `toml:"name_only"`
	CaseSensitive  bool     `toml:"case_sensitive"`
	Limit          int      `toml:"limit,omitempty"`
	IncludeFilters []string `toml:"include_filters,omitempty"`
	ExcludeFilters []string `toml:"exclude_filters,omitempty"`
}

// KeywordGroup holds the files found for one keyword.
type KeywordGroup struct {
	Keyword string      `toml:"keyword"`
	Count   int         `toml:"count"`
	Files   []FileEntry `toml:"files"`
}

// FileEntry is one exported file. Size and Modified are set only when the
// store holds metadata for the file.
type FileEntry struct {
	Path     string `toml:"path"`
	Size     *int64 `toml:"size,omitempty"`
	Modified string `toml:"modified,omitempty"`
}

// New creates an empty export for the given search.
func New(params SearchParams) *ExportedSearchResults {
	return &ExportedSearchResults{
		Metadata: Metadata{
			ExportedAt: time.Now().UTC().Truncate(time.Second),
			Version:    config.Version,
		},
		SearchParams: params,
		Results:      []KeywordGroup{},
	}
}

// AddKeywordGroup appends the files found for keyword and updates the total.
func (e *ExportedSearchResults) AddKeywordGroup(keyword string, files []FileEntry) {
	if files == nil {
		files = []FileEntry{}
	}
	e.Metadata.TotalCount += len(files)
	e.Results = append(e.Results, KeywordGroup{Keyword: keyword, Count: len(files), Files: files})
}

// ToTOML encodes the export.
func (e *ExportedSearchResults) ToTOML() (string, error) {
	data, err := toml.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("error encoding export: %w", err)
	}
	return string(data), nil
}

// FromTOML decodes an export.
func FromTOML(data string) (*ExportedSearchResults, error) {
	var e ExportedSearchResults
	if err := toml.Unmarshal([]byte(data), &e); err != nil {
		return nil, fmt.Errorf("error parsing export: %w", err)
	}
	return &e, nil
}

// ExportToFile writes the export to path.
func (e *ExportedSearchResults) ExportToFile(path string) error {
	data, err := e.ToTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("error writing export file: %w", err)
	}
	return nil
}

// ImportFromFile reads an export written by ExportToFile.
func ImportFromFile(path string) (*ExportedSearchResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading export file: %w", err)
	}
	return FromTOML(string(data))
}

// NewFileEntry builds an entry for path, taking size and modification time
// from rec when it carries them. rec may be nil.
func NewFileEntry(path string, rec *models.FileRecord) FileEntry {
	entry := FileEntry{Path: path}
	if rec == nil {
		return entry
	}
	entry.Size = rec.Size
	if t, ok := rec.ModTime(); ok {
		entry.Modified = t.UTC().Format(time.RFC3339)
	}
	return entry
}

// FileEntries converts plain search results.
func FileEntries(results []models.SearchResult) []FileEntry {
	files := make([]FileEntry, len(results))
	for i, r := range results {
		files[i] = NewFileEntry(r.Path, nil)
	}
	return files
}

// KeywordTree is a keyword with the tree built from its results.
type KeywordTree struct {
	Keyword string
	Tree    *searcher.TreeNode
}

// ConvertFromTrees creates an export whose files are the leaves of each tree.
// Trees built from no results contribute no files.
func ConvertFromTrees(params SearchParams, trees []KeywordTree) *ExportedSearchResults {
	e := New(params)
	for _, kt := range trees {
		var files []FileEntry
		for _, leaf := range kt.Tree.Leaves() {
			if leaf == kt.Tree {
				continue
			}
			files = append(files, NewFileEntry(leaf.Path, nil))
		}
		e.AddKeywordGroup(kt.Keyword, files)
	}
	return e
}

// Groups returns the export's files as keyword groups of search results, in
// the shape the search commands display.
func (e *ExportedSearchResults) Groups() []searcher.KeywordResults {
	groups := make([]searcher.KeywordResults, 0, len(e.Results))
	for _, g := range e.Results {
		results := make([]models.SearchResult, len(g.Files))
		for i, f := range g.Files {
			results[i] = models.SearchResult{Path: f.Path, Name: baseName(f.Path)}
		}
		groups = append(groups, searcher.KeywordResults{Keyword: g.Keyword, Results: results})
	}
	return groups
}

func baseName(path string) string {
	return path[strings.LastIndexAny(path, `/\`)+1:]
}
