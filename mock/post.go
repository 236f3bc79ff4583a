package mock

import (
	"context"

	"github.com/fwojciec/promptvault"
)

var (
	_ promptvault.PostClassifier     = (*PostClassifier)(nil)
	_ promptvault.PostTypeClassifier = (*PostTypeClassifier)(nil)
	_ promptvault.KeywordMatcher     = (*KeywordMatcher)(nil)
)

// PostClassifier is a mock implementation of promptvault.PostClassifier.
type PostClassifier struct {
	ClassifyFn func(ctx context.Context, post *promptvault.Post) promptvault.PostType
}

func (c *PostClassifier) Classify(ctx context.Context, post *promptvault.Post) promptvault.PostType {
	return c.ClassifyFn(ctx, post)
}

// PostTypeClassifier is a mock implementation of promptvault.PostTypeClassifier.
type PostTypeClassifier struct {
	ClassifyPostFn func(ctx context.Context, text string) (promptvault.PostType, error)
}

func (c *PostTypeClassifier) ClassifyPost(ctx context.Context, text string) (promptvault.PostType, error) {
	return c.ClassifyPostFn(ctx, text)
}

// KeywordMatcher is a mock implementation of promptvault.KeywordMatcher.
type KeywordMatcher struct {
	MatchFn func(text string) []string
}

func (m *KeywordMatcher) Match(text string) []string {
	return m.MatchFn(text)
}

var _ promptvault.PostParser = (*PostParser)(nil)

// PostParser is a mock implementation of promptvault.PostParser.
type PostParser struct {
	ParsePostsFn func(html string) ([]*promptvault.Post, error)
}

func (p *PostParser) ParsePosts(html string) ([]*promptvault.Post, error) {
	return p.ParsePostsFn(html)
}
