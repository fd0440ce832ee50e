package searcher

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"file_search_go/models"
)

// applyFilters keeps results whose "path name" text contains every include
// filter and none of the exclude filters.
func applyFilters(results []models.SearchResult, cfg models.SearchConfig) []models.SearchResult {
	if len(cfg.IncludeFilters) == 0 && len(cfg.ExcludeFilters) == 0 {
		return results
	}

	normalize := func(s string) string { return s }
	if !cfg.CaseSensitive {
		lower := cases.Lower(language.Und)
		normalize = lower.String
	}

	includes := normalizeAll(cfg.IncludeFilters, normalize)
	excludes := normalizeAll(cfg.ExcludeFilters, normalize)

	filtered := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		text := normalize(r.Path + " " + r.Name)
		if containsAll(text, includes) && !containsAny(text, excludes) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func normalizeAll(filters []string, normalize func(string) string) []string {
	out := make([]string, len(filters))
	for i, f := range filters {
		out[i] = normalize(f)
	}
	return out
}

func containsAll(text string, subs []string) bool {
	for _, s := range subs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
