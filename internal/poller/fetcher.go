// Package poller drives the pipeline: it fetches watched specs on
// cadence, detects content change by hash, versions and diffs new
// content, and hands breaking diffs to impact analysis and alerting. It
// also schedules repository scans with failure backoff.
package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxSpecSize bounds how much spec text one fetch will read.
const maxSpecSize = 32 << 20

// Fetcher retrieves raw spec text from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPStatusError is returned when the spec endpoint answers with a
// non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("spec fetch %s returned status %d", e.URL, e.StatusCode)
}

// HTTPFetcher fetches spec text over HTTP with a hard timeout. A timeout
// is reported like any other failure; the scheduler decides the next
// attempt time.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the spec body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build spec request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spec fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSpecSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read spec body: %w", err)
	}
	return raw, nil
}
