package searcher

import (
	"strings"

	"file_search_go/models"
)

// RemapRoot rewrites the root of every result path to newRoot so stores built
// on another machine point at local paths. A leading drive letter ("D:") is
// replaced when present; otherwise the first path component is. Names are
// unchanged, as is everything when newRoot is empty.
func RemapRoot(results []models.SearchResult, newRoot string) []models.SearchResult {
	if newRoot == "" {
		return results
	}
	newRoot = strings.TrimRight(newRoot, `/\`)

	out := make([]models.SearchResult, len(results))
	for i, r := range results {
		out[i] = models.SearchResult{Path: newRoot + r.Path[rootEnd(r.Path):], Name: r.Name}
	}
	return out
}

// rootEnd returns the byte offset where the path below the root starts.
func rootEnd(p string) int {
	if hasDriveLetter(p) {
		return 2
	}
	start := len(p) - len(strings.TrimLeft(p, `/\`))
	if i := strings.IndexAny(p[start:], `/\`); i >= 0 {
		return start + i
	}
	return len(p)
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
