// Package feedclient is a client-side cache and sync layer over the Wave
// Rider HTTP API. Fetched posts and comments are mirrored in memory, and
// mutating calls apply optimistically before the server confirms them.
//
// The mirror is not authoritative. Concurrent changes from other sessions
// only show up on the next fetch; the server remains the single source of
// truth and every mutation reconciles the local copy against the record the
// server returns.
package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultRetries    = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// APIError is a structured error payload returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Client talks to a Wave Rider API server and maintains a local Cache.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      *Cache

	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetry sets how many times a transient failure is retried and the
// fixed delay between attempts.
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      NewCache(),
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Cache exposes the client's local mirror.
func (c *Client) Cache() *Cache { return c.cache }

// SetToken replaces the bearer token, e.g. after a refresh.
func (c *Client) SetToken(token string) { c.token = token }

// errorResponse matches the server's error payload.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// doJSON performs a request and decodes a 2xx response into out (when out is
// non-nil). Network errors and 5xx responses are retried a fixed number of
// times with a fixed delay; 4xx responses are terminal.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if out == nil {
				io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		apiErr := decodeAPIError(resp)
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}
		return apiErr
	}
	return fmt.Errorf("request failed after %d attempts: %w", c.retries+1, lastErr)
}

func decodeAPIError(resp *http.Response) *APIError {
	var body errorResponse
	msg := resp.Status
	code := ""
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
		code = body.Code
	}
	return &APIError{Status: resp.StatusCode, Code: code, Message: msg}
}
