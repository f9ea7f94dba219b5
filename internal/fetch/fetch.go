// Package fetch retrieves raw release payloads over HTTP. It does no
// caching and no interpretation: change detection happens upstream in the
// pipeline via content fingerprints.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole fetch including redirects and body read.
const DefaultTimeout = 30 * time.Second

// Error is an HTTP-level fetch failure: transport errors and non-2xx
// responses. Fetch failures never advance a source's fingerprint, so the
// next run retries from scratch.
type Error struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client fetches URLs with a bounded timeout and a stable User-Agent.
// Redirects are followed (standard library default, up to 10 hops).
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent sets the User-Agent sent on every request. Government
// hosts throttle or block default library agents, so callers should
// identify themselves.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a fetch client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "statingest/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the full payload at url. Any non-2xx status is an *Error;
// the body is read to completion so the payload can be fingerprinted.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused, then fail.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	return payload, nil
}
