// Package lookup scrapes English senses and Turkish translations from
// dictionary websites.
package lookup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	// maxBodySize caps how much of a dictionary page is read.
	maxBodySize      = 10 * 1024 * 1024
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	retryDelay       = 500 * time.Millisecond
)

var (
	// ErrNotFound is returned when the site has no page for a word (HTTP 404).
	ErrNotFound = errors.New("word not found")
	// ErrNoResults is returned when a page was fetched but nothing could be extracted.
	ErrNoResults = errors.New("no results on page")
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Timeout bounds a single fetch, retry included.
	Timeout time.Duration
	// RequestsPerSecond paces requests across all lookups. Zero means unlimited.
	RequestsPerSecond float64
	UserAgent         string
}

// Fetcher downloads and parses HTML pages. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
	log       *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOptions, logger *slog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Fetcher{
		client:    &http.Client{},
		limiter:   rate.NewLimiter(limit, 1),
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		log:       logger.With("adapter", "fetcher"),
	}
}

// Document fetches rawURL and parses the response as HTML.
// A 404 is reported as ErrNotFound; a timeout as context.DeadlineExceeded.
func (f *Fetcher) Document(ctx context.Context, rawURL string) (*html.Node, error) {
	// Waiting for the limiter does not count against the fetch timeout.
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,tr;q=0.8")

	f.log.DebugContext(ctx, "fetch", slog.String("url", rawURL))

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxBodySize {
		return nil, fmt.Errorf("fetch %s: content-length %d exceeds limit of %d bytes", rawURL, resp.ContentLength, maxBodySize)
	}

	// Read one byte past the limit to tell a full page from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("fetch %s: body exceeds limit of %d bytes", rawURL, maxBodySize)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (f *Fetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := f.client.Do(req)

	shouldRetry := err != nil || resp.StatusCode >= 500
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	f.log.WarnContext(ctx, "retrying fetch", slog.String("url", req.URL.String()), slog.String("reason", reason))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}
	return f.client.Do(req)
}
