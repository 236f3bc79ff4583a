package gemini

import (
	"context"

	"github.com/fwojciec/promptvault"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// Ensure TokenCounter implements promptvault.TokenCounter at compile time.
var _ promptvault.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens using the Gemini tokenizer.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}

// Truncate shortens text until it fits in maxTokens. Each pass cuts the
// text in proportion to how far it is over budget.
func (tc *TokenCounter) Truncate(ctx context.Context, text string, maxTokens int) (string, error) {
	runes := []rune(text)
	for len(runes) > 0 {
		count, err := tc.CountTokens(ctx, string(runes))
		if err != nil {
			return "", err
		}
		if count <= maxTokens {
			break
		}
		keep := len(runes) * maxTokens / count
		if keep >= len(runes) {
			keep = len(runes) - 1
		}
		runes = runes[:keep]
	}
	return string(runes), nil
}
