// Package heuristics normalizes paragraph text for search and guesses
// whether a paragraph is a bibliographic author/citation line rather
// than a genuine section heading.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var authorKeywords = []string{
	"journal", "university", "postdoctoral", "vol ", "edition",
	"press", "retrieved", "archive",
}

// stripDiacritics decomposes s (NFD) and drops combining marks, so that
// "café" and "cafe" normalize identically. This mirrors the FTS5
// unicode61 tokenizer's remove_diacritics option, keeping Go-side
// normalization in step with what the index actually matches on.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeForSearch lowercases s, strips diacritics, keeps only
// alphanumerics, replaces every other rune with a single space,
// collapses adjacent spaces, and trims the result. It is idempotent:
// NormalizeForSearch(NormalizeForSearch(s)) == NormalizeForSearch(s).
func NormalizeForSearch(s string) string {
	if folded, _, err := transform.String(stripDiacritics, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		lr := unicode.ToLower(r)
		if unicode.IsLetter(lr) || unicode.IsDigit(lr) {
			b.WriteRune(lr)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// IsProbableAuthorLine reports whether s (the paragraph's original,
// un-normalized text) looks like a bibliographic citation/author line
// rather than a heading.
func IsProbableAuthorLine(s string) bool {
	normalized := NormalizeForSearch(s)
	words := strings.Fields(normalized)
	n := len(words)
	if n < 3 || n > 90 {
		return false
	}

	if !yearPattern.MatchString(normalized) {
		return false
	}

	if n < 5 {
		return false
	}

	if strings.Count(s, ",") >= 2 {
		return true
	}

	for _, kw := range authorKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}

	return strings.Contains(normalized, "http") || strings.Contains(normalized, "doi")
}
