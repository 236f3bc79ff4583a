package tfidf

import (
	"strings"

	"github.com/fwojciec/promptvault"
)

// Defaults for CategoryClassifier.
const (
	DefaultK                   = 5
	DefaultConfidenceThreshold = 0.4
)

// Ensure CategoryClassifier implements promptvault.CategoryClassifier at compile time.
var _ promptvault.CategoryClassifier = (*CategoryClassifier)(nil)

// CategoryClassifier assigns categories by k-nearest-neighbor voting over a
// labelled reference set.
type CategoryClassifier struct {
	refs      []promptvault.ReferencePrompt
	index     *Index
	k         int
	threshold float64
}

// CategoryOption configures a CategoryClassifier.
type CategoryOption func(*CategoryClassifier)

// WithK sets the number of neighbors that vote. Defaults to DefaultK.
func WithK(k int) CategoryOption {
	return func(c *CategoryClassifier) {
		if k > 0 {
			c.k = k
		}
	}
}

// WithConfidenceThreshold sets the minimum share of votes the winning
// category needs. Defaults to DefaultConfidenceThreshold.
func WithConfidenceThreshold(threshold float64) CategoryOption {
	return func(c *CategoryClassifier) {
		c.threshold = threshold
	}
}

// NewCategoryClassifier builds the vector space over refs once.
func NewCategoryClassifier(refs []promptvault.ReferencePrompt, opts ...CategoryOption) *CategoryClassifier {
	texts := make([]string, len(refs))
	for i, ref := range refs {
		texts[i] = ref.Text
	}

	c := &CategoryClassifier{
		refs:      append([]promptvault.ReferencePrompt(nil), refs...),
		index:     NewIndex(texts),
		k:         DefaultK,
		threshold: DefaultConfidenceThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify votes among the k references most similar to text.
// Confidence is the winner's votes divided by k. When it falls below the
// threshold the category is CategoryUndefined but the confidence is still
// reported. Vote ties go to the category whose best neighbor ranks first.
func (c *CategoryClassifier) Classify(text string) promptvault.ClassificationResult {
	undefined := promptvault.ClassificationResult{
		Category:  promptvault.CategoryUndefined,
		Neighbors: []promptvault.Neighbor{},
	}
	if strings.TrimSpace(text) == "" || len(c.refs) == 0 {
		return undefined
	}

	hits := c.index.Rank(text, c.k)
	if len(hits) == 0 {
		return undefined
	}

	neighbors := make([]promptvault.Neighbor, len(hits))
	votes := make(map[string]int)
	var order []string
	for i, hit := range hits {
		ref := c.refs[hit.Doc]
		neighbors[i] = promptvault.Neighbor{
			Text:       ref.Text,
			Category:   ref.Category,
			Similarity: hit.Similarity,
		}
		if _, ok := votes[ref.Category]; !ok {
			order = append(order, ref.Category)
		}
		votes[ref.Category]++
	}

	winner := order[0]
	for _, cat := range order[1:] {
		if votes[cat] > votes[winner] {
			winner = cat
		}
	}

	confidence := clamp(float64(votes[winner]) / float64(c.k))
	result := promptvault.ClassificationResult{
		Category:   winner,
		Confidence: confidence,
		Neighbors:  neighbors,
	}
	if confidence < c.threshold {
		result.Category = promptvault.CategoryUndefined
	}
	return result
}
