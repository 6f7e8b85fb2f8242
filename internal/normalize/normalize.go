// Package normalize provides text folding utilities for search and matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics, and collapses runs of whitespace to a
// single space. "Émile Zola" and "emile  zola" fold to the same string, which
// is what lets a directory search for "emile" find both.
func Fold(s string) string {
	s = stripDiacritics(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldTerms folds a query string and splits it into individual search terms.
// Empty input yields a nil slice.
func FoldTerms(query string) []string {
	folded := Fold(query)
	if folded == "" {
		return nil
	}
	return strings.Split(folded, " ")
}

// stripDiacritics decomposes to NFD and removes combining marks, so "café"
// becomes "cafe". Falls back to the input unchanged if the transform fails
// (which it can on invalid UTF-8).
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
