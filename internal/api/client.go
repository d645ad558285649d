// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the chat API.
const (
	// DefaultBaseURL is the API origin used when none is configured.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of extra attempts for GET requests.
	DefaultMaxRetries = 2

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// UserAgent is sent with every request.
	UserAgent = "rigchat/0.1.0"
)

// TokenSource supplies the bearer credential for requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token implements TokenSource.
func (f TokenFunc) Token() string { return f() }

// Client talks to the chat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
	limiter    *rate.Limiter
	tokens     TokenSource

	mu             sync.RWMutex
	onUnauthorized func()
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithMaxRetries sets the number of extra attempts for GET requests.
// POST requests are never retried.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries >= 0 {
		c.maxRetries = maxRetries
	}
	return c
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables throttling.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithTokenSource sets the bearer credential source.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	c.tokens = ts
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// OnUnauthorized registers fn to run whenever a request is answered with 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PIPELINE
// =============================================================================

// envelope is the success payload wrapper of the chat API.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do performs r and decodes the unwrapped response data into out.
// GET requests are retried with exponential backoff on transient errors.
func (c *Client) do(ctx context.Context, r request, out any) error {
	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", r.op, err)
		}
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt)
			log.Printf("API_RETRY | op=%s attempt=%d delay=%v", r.op, attempt, delay)
			select {
			case <-ctx.Done():
				return transportError(r.op, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := c.doOnce(ctx, r, payload)
		if err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return err
		}
		return decodeData(r.op, body, out)
	}

	return lastErr
}

// doOnce performs a single attempt and returns the raw response body of a
// successful call.
func (c *Client) doOnce(ctx context.Context, r request, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(r.op, err)
		}
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", r.op, err)
	}

	requestID := uuid.New().String()
	c.setHeaders(req, requestID, payload != nil)
	logRequest(req, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	// Keep the credential out of anything that inspects the request later.
	req.Header.Del("Authorization")

	if err != nil {
		log.Printf("API_ERROR | op=%s request_id=%s error=%v", r.op, requestID, err)
		return nil, transportError(r.op, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	logResponse(resp, requestID, time.Since(start))
	if err != nil {
		return nil, transportError(r.op, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized {
			c.unauthorized()
		}
		return nil, handleErrorResponse(r.op, resp.StatusCode, body)
	}

	return body, nil
}

// setHeaders sets the headers shared by every request.
func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()

	log.Printf("API_UNAUTHORIZED | session=reset")
	if fn != nil {
		fn()
	}
}

// decodeData unwraps the {"data": ...} envelope into out. Bodies without
// an envelope are decoded as-is.
func decodeData(op string, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		body = env.Data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", op, err)
	}
	return nil
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}

	return body, nil
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	// 500ms, 1s, 2s, ...
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// logRequest logs an API request. Headers and bodies are never logged.
func logRequest(req *http.Request, requestID string) {
	log.Printf("API_REQUEST | method=%s path=%s request_id=%s", req.Method, req.URL.Path, requestID)
}

// logResponse logs an API response with its duration.
func logResponse(resp *http.Response, requestID string, duration time.Duration) {
	log.Printf("API_RESPONSE | status=%d request_id=%s duration=%v", resp.StatusCode, requestID, duration)
}
