package promptvault

import "context"

// TokenCounter measures text in model tokens. It keeps fallback
// classifier input within the model's budget.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)

	// Truncate shortens text to at most maxTokens tokens.
	Truncate(ctx context.Context, text string, maxTokens int) (string, error)
}
