package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/promptvault"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure RetryFetcher implements promptvault.Fetcher at compile time.
var _ promptvault.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries failed downloads with backoff. Errors carrying
// EINVALID or ENOTFOUND are returned at once since repeating the request
// cannot change them.
type RetryFetcher struct {
	next   promptvault.Fetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryFetcher wraps next. A nil delays slice uses DefaultRetryDelays;
// an empty one disables retries. logger may be nil.
func NewRetryFetcher(next promptvault.Fetcher, delays []time.Duration, logger *slog.Logger) *RetryFetcher {
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

// Fetch attempts the download up to len(delays)+1 times.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		text, err := f.next.Fetch(ctx, url)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if f.logger != nil {
			f.logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delays[attempt]):
		}
	}

	return "", lastErr
}

func retryable(err error) bool {
	switch promptvault.ErrorCode(err) {
	case promptvault.EINVALID, promptvault.ENOTFOUND:
		return false
	}
	return true
}
