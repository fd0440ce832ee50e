package searcher

import "strings"

// keywordSeparators are the runes that split user input into keywords:
// ASCII and full-width semicolon and comma, space and tab.
const keywordSeparators = ";； ,，\t"

// ParseSearchKeywords splits input into trimmed, non-empty keywords in input
// order. Duplicates are kept.
func ParseSearchKeywords(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return strings.ContainsRune(keywordSeparators, r)
	})

	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			keywords = append(keywords, f)
		}
	}
	return keywords
}
