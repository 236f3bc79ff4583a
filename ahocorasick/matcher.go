// Package ahocorasick provides keyword matching backed by an Aho-Corasick
// automaton, finding every keyword of a set in a single pass over the text.
package ahocorasick

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/fwojciec/promptvault"
)

// Ensure Matcher implements promptvault.KeywordMatcher at compile time.
var _ promptvault.KeywordMatcher = (*Matcher)(nil)

// Matcher finds case-insensitive keyword occurrences in text.
// It is safe for concurrent use.
type Matcher struct {
	keywords []string
	m        *ahocorasick.Matcher
}

// NewMatcher builds an automaton over keywords. Keywords are lowercased and
// trimmed; empty and repeated keywords are dropped.
func NewMatcher(keywords []string) *Matcher {
	seen := make(map[string]bool, len(keywords))
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		normalized = append(normalized, kw)
	}

	m := &Matcher{keywords: normalized}
	if len(normalized) > 0 {
		m.m = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// Keywords returns the normalized keyword set.
func (m *Matcher) Keywords() []string {
	return m.keywords
}

// Match returns the distinct keywords occurring in text, in keyword order.
func (m *Matcher) Match(text string) []string {
	if m.m == nil || text == "" {
		return nil
	}

	hits := m.m.MatchThreadSafe([]byte(strings.ToLower(text)))
	if len(hits) == 0 {
		return nil
	}

	found := make([]bool, len(m.keywords))
	for _, i := range hits {
		if i >= 0 && i < len(found) {
			found[i] = true
		}
	}

	matched := make([]string, 0, len(hits))
	for i, ok := range found {
		if ok {
			matched = append(matched, m.keywords[i])
		}
	}
	return matched
}
