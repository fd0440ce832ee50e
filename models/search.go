package models

// SearchResult is one matched record returned by a substring query.
type SearchResult struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// SearchConfig controls a single search invocation.
type SearchConfig struct {
	// MaxResults caps the rows fetched per keyword from one store.
	MaxResults int
	// SearchInPath matches the keyword against the full path as well as the name.
	SearchInPath bool
	CaseSensitive bool
	// IncludeFilters must all appear in path+name (AND).
	IncludeFilters []string
	// ExcludeFilters drop a result when any of them appears in path+name (OR).
	ExcludeFilters []string
}

// DefaultSearchConfig returns the configuration used when the caller supplies none.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MaxResults:   2000,
		SearchInPath: true,
	}
}
