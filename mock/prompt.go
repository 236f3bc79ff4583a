package mock

import (
	"context"

	"github.com/fwojciec/promptvault"
)

var (
	_ promptvault.PromptExtractor = (*PromptExtractor)(nil)
	_ promptvault.PromptService   = (*PromptService)(nil)
	_ promptvault.PromptWriter    = (*PromptWriter)(nil)
)

// PromptExtractor is a mock implementation of promptvault.PromptExtractor.
type PromptExtractor struct {
	ExtractFn func(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error)
}

func (e *PromptExtractor) Extract(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (*promptvault.Prompt, error) {
	return e.ExtractFn(ctx, postType, post)
}

// PromptService is a mock implementation of promptvault.PromptService.
type PromptService struct {
	CreatePromptFn   func(ctx context.Context, prompt *promptvault.Prompt) error
	FindPromptByIDFn func(ctx context.Context, id string) (*promptvault.Prompt, error)
	FindPromptsFn    func(ctx context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error)
	DeletePromptFn   func(ctx context.Context, id string) error
}

func (s *PromptService) CreatePrompt(ctx context.Context, prompt *promptvault.Prompt) error {
	return s.CreatePromptFn(ctx, prompt)
}

func (s *PromptService) FindPromptByID(ctx context.Context, id string) (*promptvault.Prompt, error) {
	return s.FindPromptByIDFn(ctx, id)
}

func (s *PromptService) FindPrompts(ctx context.Context, filter promptvault.PromptFilter) ([]*promptvault.Prompt, error) {
	return s.FindPromptsFn(ctx, filter)
}

func (s *PromptService) DeletePrompt(ctx context.Context, id string) error {
	return s.DeletePromptFn(ctx, id)
}

// PromptWriter is a mock implementation of promptvault.PromptWriter.
type PromptWriter struct {
	WritePromptFn func(ctx context.Context, prompt *promptvault.Prompt) error
}

func (w *PromptWriter) WritePrompt(ctx context.Context, prompt *promptvault.Prompt) error {
	return w.WritePromptFn(ctx, prompt)
}
