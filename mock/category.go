package mock

import "github.com/fwojciec/promptvault"

var (
	_ promptvault.CategoryClassifier = (*CategoryClassifier)(nil)
	_ promptvault.DuplicateFinder    = (*DuplicateFinder)(nil)
)

// CategoryClassifier is a mock implementation of promptvault.CategoryClassifier.
type CategoryClassifier struct {
	ClassifyFn func(text string) promptvault.ClassificationResult
}

func (c *CategoryClassifier) Classify(text string) promptvault.ClassificationResult {
	return c.ClassifyFn(text)
}

// DuplicateFinder is a mock implementation of promptvault.DuplicateFinder.
type DuplicateFinder struct {
	FindSimilarFn func(text string) []promptvault.PromptMatch
}

func (f *DuplicateFinder) FindSimilar(text string) []promptvault.PromptMatch {
	return f.FindSimilarFn(text)
}
