package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/promptvault"
)

// Ensure LoggingPostTypeClassifier implements promptvault.PostTypeClassifier.
var _ promptvault.PostTypeClassifier = (*LoggingPostTypeClassifier)(nil)

// LoggingPostTypeClassifier wraps the fallback classifier with logging.
type LoggingPostTypeClassifier struct {
	next   promptvault.PostTypeClassifier
	logger *slog.Logger
}

// NewLoggingPostTypeClassifier creates a new LoggingPostTypeClassifier.
func NewLoggingPostTypeClassifier(next promptvault.PostTypeClassifier, logger *slog.Logger) *LoggingPostTypeClassifier {
	return &LoggingPostTypeClassifier{next: next, logger: logger}
}

// ClassifyPost delegates to the wrapped classifier and logs the outcome.
func (c *LoggingPostTypeClassifier) ClassifyPost(ctx context.Context, text string) (postType promptvault.PostType, err error) {
	defer func(begin time.Time) {
		c.logger.Info("fallback classification",
			"chars", len([]rune(text)),
			"type", string(postType),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.ClassifyPost(ctx, text)
}

// Ensure LoggingPostClassifier implements promptvault.PostClassifier.
var _ promptvault.PostClassifier = (*LoggingPostClassifier)(nil)

// LoggingPostClassifier wraps a PostClassifier with debug logging.
type LoggingPostClassifier struct {
	next   promptvault.PostClassifier
	logger *slog.Logger
}

// NewLoggingPostClassifier creates a new LoggingPostClassifier.
func NewLoggingPostClassifier(next promptvault.PostClassifier, logger *slog.Logger) *LoggingPostClassifier {
	return &LoggingPostClassifier{next: next, logger: logger}
}

// Classify delegates to the wrapped classifier and logs the type.
func (c *LoggingPostClassifier) Classify(ctx context.Context, post *promptvault.Post) (postType promptvault.PostType) {
	defer func(begin time.Time) {
		var id string
		if post != nil {
			id = post.ID
		}
		c.logger.Debug("post classification",
			"post", id,
			"type", string(postType),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Classify(ctx, post)
}
