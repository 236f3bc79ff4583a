// Package tfidf implements the vector-space text model used to categorize
// prompts and to detect near-duplicates: tokenization, TF-IDF weighting,
// cosine similarity and edit-distance verification.
package tfidf

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// tokenRe matches maximal runs of letters (any alphabet) and digits.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenize lowercases text and splits it into word tokens, discarding
// punctuation and whitespace. Empty or punctuation-only input yields nil.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// LevenshteinDistance returns the number of single-character insertions,
// deletions and substitutions needed to turn a into b.
// Characters are compared as runes, not bytes.
func LevenshteinDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// LevenshteinSimilarity normalizes the edit distance between a and b into
// [0, 1]: 1 - distance / max(len(a), len(b)), with lengths in runes.
// Two empty strings are identical.
func LevenshteinSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1.0
	}
	sim := 1.0 - float64(LevenshteinDistance(a, b))/float64(longest)
	return clamp(sim)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
