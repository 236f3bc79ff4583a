package mock

import (
	"context"

	"github.com/fwojciec/promptvault"
)

var _ promptvault.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of promptvault.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
	TruncateFn    func(ctx context.Context, text string, maxTokens int) (string, error)
}

func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return c.CountTokensFn(ctx, text)
}

func (c *TokenCounter) Truncate(ctx context.Context, text string, maxTokens int) (string, error) {
	return c.TruncateFn(ctx, text, maxTokens)
}
