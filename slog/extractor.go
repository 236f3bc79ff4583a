package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/promptvault"
)

// Ensure LoggingPromptExtractor implements promptvault.PromptExtractor.
var _ promptvault.PromptExtractor = (*LoggingPromptExtractor)(nil)

// LoggingPromptExtractor wraps a PromptExtractor with debug logging.
type LoggingPromptExtractor struct {
	next   promptvault.PromptExtractor
	logger *slog.Logger
}

// NewLoggingPromptExtractor creates a new LoggingPromptExtractor.
func NewLoggingPromptExtractor(next promptvault.PromptExtractor, logger *slog.Logger) *LoggingPromptExtractor {
	return &LoggingPromptExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs whether a prompt
// came out of the post.
func (e *LoggingPromptExtractor) Extract(ctx context.Context, postType promptvault.PostType, post *promptvault.Post) (prompt *promptvault.Prompt, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"type", string(postType),
			"extracted", prompt != nil,
			"duration", time.Since(begin),
		}
		if post != nil {
			attrs = append(attrs, "post", post.ID)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
			e.logger.Warn("extraction failed", attrs...)
			return
		}
		e.logger.Debug("extraction", attrs...)
	}(time.Now())
	return e.next.Extract(ctx, postType, post)
}
