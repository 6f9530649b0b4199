package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const wikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// Fetcher retrieves raw article markup over HTTP with a fixed wall-clock
// timeout per request.
type Fetcher struct {
	client    *http.Client
	userAgent string
	baseURL   string
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseURL overrides the Wikipedia base URL. Used by tests to point the
// fetcher at a local server.
func WithBaseURL(base string) FetcherOption {
	return func(f *Fetcher) { f.baseURL = base }
}

// NewFetcher creates a Fetcher with the given request timeout and
// User-Agent header.
func NewFetcher(timeout time.Duration, userAgent string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		baseURL:   wikipediaBaseURL,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NormalizeURL converts a topic string into a canonical article URL. Full
// http(s) addresses pass through unchanged; bare topics are trimmed, have
// whitespace replaced with underscores, and are prefixed with the base URL.
func (f *Fetcher) NormalizeURL(topic string) string {
	if strings.HasPrefix(topic, "http") {
		return topic
	}
	clean := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	return f.baseURL + clean
}

// Fetch retrieves the raw markup for a topic or full article URL. It issues
// a single GET; retries belong to the caller's reliability wrapper. The
// resolved canonical URL is returned alongside the markup.
func (f *Fetcher) Fetch(ctx context.Context, topic string) (markup, resolvedURL string, err error) {
	url := f.NormalizeURL(topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: creating request for %q: %v", ErrFetch, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: fetching %q: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("%w: fetching %q: HTTP %d", ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: reading body from %q: %v", ErrFetch, url, err)
	}

	if len(body) == 0 {
		return "", "", fmt.Errorf("%w: empty response body from %q", ErrFetch, url)
	}

	return string(body), url, nil
}
