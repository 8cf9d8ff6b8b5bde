// Package http provides HTTP-based implementations of docbase.Fetcher,
// docbase.SitemapService and docbase.CredentialProvider for crawling
// static documentation sites that don't require JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docbase"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements docbase.Fetcher at compile time.
var _ docbase.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// It does not execute JavaScript and is suitable for static sites only.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	creds   *docbase.Credentials
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

// WithBasicAuth attaches HTTP basic auth credentials to every request.
// Used when crawling internal documentation portals.
func WithBasicAuth(creds *docbase.Credentials) Option {
	return func(f *Fetcher) {
		f.creds = creds
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
// Returns EUNAUTHORIZED when the server rejects the credentials and
// ENOTFOUND when the page does not exist.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if f.creds != nil {
		req.SetBasicAuth(f.creds.Username, f.creds.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", docbase.Errorf(docbase.EUNAUTHORIZED, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode == http.StatusNotFound:
		return "", docbase.Errorf(docbase.ENOTFOUND, "HTTP 404 for %s", url)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
