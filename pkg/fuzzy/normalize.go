// Package fuzzy normalizes names for tolerant equality matching.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Key reduces a name to a comparison key: diacritics stripped, punctuation
// collapsed to spaces, lowercased. Two names with equal keys are treated as
// the same name.
func Key(s string) string {
	s = norm.NFKD.String(s)

	var result strings.Builder
	for _, r := range s {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	s = result.String()

	s = punctRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Match reports whether two names normalize to the same key.
func Match(a, b string) bool {
	return Key(a) == Key(b)
}
