// Package transport issues HTTP requests to a fixed base URL with per-attempt
// timeouts, bounded retries with exponential backoff and jitter, and pluggable
// classification of error responses.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds each attempt when neither the client nor the request sets one.
const DefaultTimeout = 30 * time.Second

// Observer is notified about every attempt and every scheduled retry.
type Observer interface {
	ObserveAttempt(method, path string, status int, elapsed time.Duration, err error)
	ObserveRetry(method, path string, attempt int, delay time.Duration)
}

// Client is safe for concurrent use; each Do call keeps its own retry state.
type Client struct {
	baseURL        string
	defaultTimeout time.Duration
	httpClient     *http.Client
	extractor      ErrorExtractor
	policy         RetryPolicy
	observer       Observer
	logger         *slog.Logger
	sleep          func(ctx context.Context, d time.Duration) error
	jitter         func() float64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithErrorExtractor installs the remote API's error envelope knowledge.
func WithErrorExtractor(e ErrorExtractor) Option {
	return func(c *Client) { c.extractor = e }
}

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p.normalize() }
}

// WithObserver registers an attempt observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithJitterSource replaces the uniform [0,1) sample used for jitter.
func WithJitterSource(fn func() float64) Option {
	return func(c *Client) {
		if fn != nil {
			c.jitter = fn
		}
	}
}

// New creates a client for baseURL. A trailing slash on baseURL is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		defaultTimeout: DefaultTimeout,
		httpClient:     &http.Client{},
		policy:         DefaultRetryPolicy,
		logger:         slog.Default(),
		sleep:          sleepContext,
		jitter:         defaultJitter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req, retrying transient failures, and returns the parsed body of
// the first successful response.
func (c *Client) Do(ctx context.Context, req *Request) (*Body, error) {
	if req == nil {
		return nil, &Error{Message: "request is nil"}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	headers := c.buildHeaders(req)

	state := retryState{}
	for state.attempt = 1; state.attempt <= c.policy.MaxAttempts; state.attempt++ {
		body, status, err := c.attempt(ctx, req, headers, timeout)
		if err == nil {
			return body, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Message: "request cancelled", Cause: ctxErr}
		}

		retryable := status == 0 || c.policy.RetryableStatus(status)
		state.lastErr = err
		if !retryable {
			return nil, err
		}
		if state.attempt == c.policy.MaxAttempts {
			break
		}

		delay := c.policy.Backoff(state.attempt, c.jitter())
		c.logger.Debug("retrying request",
			"method", req.Method,
			"path", req.Route(),
			"attempt", state.attempt,
			"status", status,
			"delay", delay,
			"error", err)
		if c.observer != nil {
			c.observer.ObserveRetry(req.Method, req.Route(), state.attempt, delay)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &Error{Message: "request cancelled during backoff", Cause: err}
		}
		state.waited += delay
	}

	if state.lastErr == nil {
		return nil, ErrAllAttemptsFailed
	}
	c.logger.Debug("request failed after retries",
		"method", req.Method,
		"path", req.Route(),
		"attempts", c.policy.MaxAttempts,
		"waited", state.waited)
	return nil, state.lastErr
}

// attempt performs a single bounded round trip. status is non-zero when a
// response was received.
func (c *Client) attempt(ctx context.Context, req *Request, headers http.Header, timeout time.Duration) (*Body, int, error) {
	start := time.Now()
	body, status, err := c.roundTrip(ctx, req, headers, timeout)
	if c.observer != nil {
		c.observer.ObserveAttempt(req.Method, req.Route(), status, time.Since(start), err)
	}
	return body, status, err
}

func (c *Client) roundTrip(ctx context.Context, req *Request, headers http.Header, timeout time.Duration) (*Body, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reader, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, 0, &Error{Message: "failed to encode request body", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL(c.baseURL), reader)
	if err != nil {
		return nil, 0, &Error{Message: "failed to create request", Cause: err}
	}
	httpReq.Header = headers.Clone()
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, 0, &Error{Message: fmt.Sprintf("attempt timed out after %v", timeout), Cause: context.DeadlineExceeded}
		}
		return nil, 0, &Error{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{Message: "failed to read response body", Cause: err}
	}
	body := parseBody(raw)

	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, c.statusError(resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

// buildHeaders applies caller headers, a single authentication header and the
// JSON content-type default for non-multipart bodies.
func (c *Client) buildHeaders(req *Request) http.Header {
	h := make(http.Header, len(req.Headers)+2)
	for k, v := range req.Headers {
		h.Set(k, v)
	}

	switch {
	case req.Token != "":
		if req.TokenType == "" || req.TokenType == "Bearer" {
			h.Set("Authorization", "Bearer "+req.Token)
		} else {
			h.Set(req.TokenType, req.Token)
		}
	case req.JWT != "":
		h.Set("JWT", req.JWT)
	}

	if req.Multipart() {
		// The form encoder supplies the boundary.
		h.Del("Content-Type")
	} else if req.Body != nil && h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
	return h
}
