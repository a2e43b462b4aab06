package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; generous for a single-host tool
const (
	defaultMaxIdleConns    = 10
	defaultMaxConnsPerHost = 2
	defaultIdleConnTimeout = 60 * time.Second
)

// Response holds the result of an HTTP request made by [Client].
//
// Response captures everything the check cycle needs: the body
// (limited to 1MB), status code, latency, and any transport error.
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport-level error (connection failure,
	// timeout, truncated body). nil means the request completed.
	Error error
}

// Client is an HTTP client wrapper for polling a single JSON endpoint.
//
// Timeouts are applied per request via context rather than a global
// client timeout, so exceeding the deadline aborts the in-flight
// request. Response bodies are limited to 1MB.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new polling [Client].
//
// The client keeps a small idle connection pool so consecutive checks
// against the same host reuse their connection. Each check otherwise
// opens and fully closes its own request/response cycle.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:      defaultMaxIdleConns,
				MaxConnsPerHost:   defaultMaxConnsPerHost,
				IdleConnTimeout:   defaultIdleConnTimeout,
				DisableKeepAlives: false,
			},
		},
	}
}

// Fetch performs an HTTP GET and returns a structured [Response].
//
// The timeout bounds the whole request including body read; when it
// elapses the in-flight request is aborted via context cancellation
// and the error is reported in the Error field. Fetch always returns
// a Response; errors are captured rather than returned separately,
// which simplifies handling in the loop.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's pool.
//
// Called when the loop stops so resources are released immediately
// rather than after the idle timeout. Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
