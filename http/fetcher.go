// Package http provides an HTTP implementation of promptvault.Fetcher for
// downloading text attachments linked from forum posts.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/promptvault"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps the size of a downloaded attachment.
const DefaultMaxBodySize = 1 << 20

// Ensure Fetcher implements promptvault.Fetcher at compile time.
var _ promptvault.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves attachment text over HTTP. Bodies are decoded to UTF-8
// using the charset from the Content-Type header, falling back to content
// sniffing, so windows-1251 attachments from older forums read correctly.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBody   int64
	userAgent string

	// Per-host token buckets, created on first request to a host.
	// A zero hostRate disables throttling.
	mu        sync.Mutex
	hosts     map[string]*rate.Limiter
	hostRate  rate.Limit
	hostBurst int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize sets the largest body Fetch accepts.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBody = n
	}
}

// WithHostRate allows rps requests per second to each host, with up to
// burst requests at once. Other hosts are never held back.
func WithHostRate(rps float64, burst int) Option {
	return func(f *Fetcher) {
		f.hostRate = rate.Limit(rps)
		f.hostBurst = max(burst, 1)
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		maxBody: DefaultMaxBodySize,
		hosts:   make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the body of rawURL as UTF-8 text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", promptvault.Errorf(promptvault.EINVALID, "invalid attachment URL %q", rawURL)
	}

	if err := f.wait(ctx, u.Hostname()); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", promptvault.Errorf(promptvault.ENOTFOUND, "attachment not found: %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	if resp.ContentLength > f.maxBody {
		return "", promptvault.Errorf(promptvault.EINVALID, "attachment too large: %d bytes", resp.ContentLength)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > f.maxBody {
		return "", promptvault.Errorf(promptvault.EINVALID, "attachment too large: over %d bytes", f.maxBody)
	}

	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", rawURL, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return strings.TrimPrefix(string(body), "\ufeff"), nil
}

// wait blocks until host's token bucket allows a request.
func (f *Fetcher) wait(ctx context.Context, host string) error {
	if f.hostRate <= 0 {
		return nil
	}

	f.mu.Lock()
	limiter, ok := f.hosts[host]
	if !ok {
		limiter = rate.NewLimiter(f.hostRate, f.hostBurst)
		f.hosts[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
