package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound is wrapped by StatusError for 404 and 410 responses: the image
// is gone, which is an expected outcome rather than a transfer failure.
var ErrNotFound = errors.New("http: resource not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.Code, e.Status, e.URL)
}

// Unwrap lets errors.Is(err, ErrNotFound) match missing resources.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound || e.Code == http.StatusGone {
		return ErrNotFound
	}
	return nil
}

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds a whole request including reading the body.
	// Default: 60s
	Timeout time.Duration

	// UserAgent is sent with every request.
	// Default: "GameLauncher"
	UserAgent string

	// APIKey, when set, is sent as "Authorization: Bearer <APIKey>".
	APIKey string

	// MaxBodySize caps how many bytes are read from a response body.
	// Default: 32 MiB
	MaxBodySize int64
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:     60 * time.Second,
		UserAgent:   "GameLauncher",
		MaxBodySize: 32 << 20,
	}
}

// Payload is a successful response body with the headers the cache needs.
type Payload struct {
	Body        []byte
	ContentType string
}

// Client wraps HTTP operations for image providers.
//
// Client provides:
//   - Configured User-Agent and optional bearer credential
//   - Timeout handling
//   - Typed status errors
//
// Example usage:
//
//	client := NewClient(DefaultOptions())
//
//	payload, err := client.Fetch(ctx, "https://cdn.example.com/grid/620.png")
//	if errors.Is(err, ErrNotFound) {
//	    // the provider no longer has this image
//	}
type Client struct {
	httpClient *http.Client
	opts       Options
}

// NewClient creates a new HTTP client. Zero-valued options fall back to
// DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = def.MaxBodySize
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		opts: opts,
	}
}

// Fetch performs a single GET request and returns the response body.
//
// The request includes the configured User-Agent header and, if an API key
// is configured, the bearer credential. There is no retry.
//
// Returns an error if:
//   - The request fails or times out
//   - The response status is not 2xx (*StatusError)
//   - Reading the body fails or exceeds MaxBodySize
//
// Example:
//
//	payload, err := client.Fetch(ctx, "https://cdn.example.com/hero/620.jpg")
func (c *Client) Fetch(ctx context.Context, url string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.opts.MaxBodySize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, c.opts.MaxBodySize)
	}

	return &Payload{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
