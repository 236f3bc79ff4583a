package tfidf

import (
	"sort"
	"strings"

	"github.com/fwojciec/promptvault"
)

// Defaults for DuplicateDetector.
const (
	DefaultTopN               = 10
	DefaultDuplicateThreshold = 0.9
)

// Ensure DuplicateDetector implements promptvault.DuplicateFinder at compile time.
var _ promptvault.DuplicateFinder = (*DuplicateDetector)(nil)

// DuplicateDetector finds near-duplicates of a text in a fixed corpus.
// Cosine similarity over TF-IDF vectors pre-selects candidates; edit
// distance over the full lowercased strings decides duplication.
type DuplicateDetector struct {
	texts     []string
	index     *Index
	topN      int
	threshold float64
}

// DuplicateOption configures a DuplicateDetector.
type DuplicateOption func(*DuplicateDetector)

// WithTopN sets how many cosine candidates are verified.
// Defaults to DefaultTopN.
func WithTopN(n int) DuplicateOption {
	return func(d *DuplicateDetector) {
		if n > 0 {
			d.topN = n
		}
	}
}

// WithDuplicateThreshold sets the minimum normalized edit similarity for a
// candidate to count as a duplicate. Defaults to DefaultDuplicateThreshold.
func WithDuplicateThreshold(threshold float64) DuplicateOption {
	return func(d *DuplicateDetector) {
		d.threshold = threshold
	}
}

// NewDuplicateDetector builds the vector space over texts once.
func NewDuplicateDetector(texts []string, opts ...DuplicateOption) *DuplicateDetector {
	d := &DuplicateDetector{
		texts:     append([]string(nil), texts...),
		index:     NewIndex(texts),
		topN:      DefaultTopN,
		threshold: DefaultDuplicateThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FindSimilar ranks corpus texts against text using the configured top-N
// and threshold.
func (d *DuplicateDetector) FindSimilar(text string) []promptvault.PromptMatch {
	return d.FindSimilarWith(text, d.topN, d.threshold)
}

// FindSimilarWith is like FindSimilar with explicit parameters.
// All verified candidates are returned sorted by descending similarity,
// not only the duplicates.
func (d *DuplicateDetector) FindSimilarWith(text string, topN int, threshold float64) []promptvault.PromptMatch {
	if strings.TrimSpace(text) == "" || len(d.texts) == 0 {
		return []promptvault.PromptMatch{}
	}

	hits := d.index.Rank(text, topN)
	query := strings.ToLower(text)

	matches := make([]promptvault.PromptMatch, 0, len(hits))
	for _, hit := range hits {
		candidate := d.texts[hit.Doc]
		score := LevenshteinSimilarity(query, strings.ToLower(candidate))
		matches = append(matches, promptvault.PromptMatch{
			CandidateText:        candidate,
			SimilarityScore:      score,
			IsPotentialDuplicate: score >= threshold,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})
	return matches
}
