// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/casechat/internal/logging"
	"github.com/jeranaias/casechat/internal/metrics"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds a single attempt when the request sets none.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultBackoffStep is multiplied by the retry number to get the delay.
	DefaultBackoffStep = 1 * time.Second

	// DefaultMaxResponseSize caps how much of a body is read (10MB).
	DefaultMaxResponseSize = 10 * 1024 * 1024

	// DefaultUserAgent identifies casechat to the service.
	DefaultUserAgent = "casechat/1.0"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the transport client.
type Config struct {
	// Timeout for one attempt when the request does not set one (default: 30s)
	Timeout time.Duration

	// MaxRetries after the first attempt (default: 3). Negative disables retry.
	MaxRetries int

	// BackoffStep is the linear backoff unit (default: 1s)
	BackoffStep time.Duration

	// RateLimit in requests per second. 0 disables limiting.
	RateLimit float64

	// RateBurst for the limiter (default: 1)
	RateBurst int

	// UserAgent header value
	UserAgent string

	// Origin is sent as the Origin header when non-empty.
	Origin string

	// MaxResponseSize caps body reads (default: 10MB)
	MaxResponseSize int64
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		BackoffStep:     DefaultBackoffStep,
		RateBurst:       1,
		UserAgent:       DefaultUserAgent,
		MaxResponseSize: DefaultMaxResponseSize,
	}
}

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

// Request describes one logical call. Body is kept as bytes so it can be
// replayed on retry.
type Request struct {
	// Endpoint is a short label for logs and metrics ("health", "upload").
	Endpoint    string
	Method      string
	URL         string
	Header      http.Header
	Body        []byte
	ContentType string

	// Timeout per attempt. Zero uses the client default.
	Timeout time.Duration
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Attempts   int
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client performs HTTP calls with a per-attempt timeout and a retry policy
// limited to failures where the request never reached the service.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
	metrics    *metrics.Metrics
	sleep      Sleeper
}

// NewClient creates a transport client. Zero fields in cfg take defaults.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffStep == 0 {
		c.BackoffStep = DefaultBackoffStep
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}

	client := &Client{
		config:     &c,
		httpClient: &http.Client{},
		logger:     logging.Nop(),
		sleep:      sleepContext,
	}
	if c.RateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.RateBurst)
	}
	return client
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithLogger sets the diagnostic logger.
func (c *Client) WithLogger(l *logging.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// WithMetrics sets the metrics sink.
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// WithSleeper replaces the backoff wait. Tests use it to record delays.
func (c *Client) WithSleeper(s Sleeper) *Client {
	if s != nil {
		c.sleep = s
	}
	return c
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return *c.config
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// Do executes req. A 2xx response is returned fully read. Anything else is
// returned as a *Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}

	var lastErr *Error
	maxAttempts := c.config.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * c.config.BackoffStep
			c.metrics.ObserveRetry(req.Endpoint)
			c.logger.Debug("retrying request",
				"endpoint", req.Endpoint,
				"attempt", attempt,
				"delay", delay,
				"previous", lastErr.Kind.String(),
			)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, c.fail(req, attempt-1, KindCanceled, err)
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.fail(req, attempt-1, KindCanceled, err)
			}
		}

		resp, err := c.attempt(ctx, req, timeout, attempt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !c.retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// attempt performs a single HTTP exchange bounded by timeout.
func (c *Client) attempt(ctx context.Context, req *Request, timeout time.Duration, n int) (*Response, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, c.fail(req, n, KindRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.Origin != "" {
		httpReq.Header.Set("Origin", c.config.Origin)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := kindOf(ctx, err)
		c.observe(req, n, 0, start, false, kind.String())
		return nil, c.fail(req, n, kind, err)
	}
	defer resp.Body.Close()

	data, readErr := readLimited(resp.Body, c.config.MaxResponseSize)
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if readErr != nil {
		c.observe(req, n, resp.StatusCode, start, false, KindBody.String())
		te := c.fail(req, n, KindBody, readErr)
		te.StatusCode = resp.StatusCode
		te.Status = resp.Status
		te.Body = data
		return nil, te
	}
	c.observe(req, n, resp.StatusCode, start, ok, "")

	if !ok {
		return nil, &Error{
			Kind:       KindStatus,
			Endpoint:   req.Endpoint,
			Method:     req.Method,
			URL:        redactURL(req.URL),
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       data,
			Attempts:   n,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		Attempts:   n,
	}, nil
}

// retryable reports whether a failed attempt may be repeated. Only failures
// where no response arrived qualify, for every method.
func (c *Client) retryable(err *Error) bool {
	switch err.Kind {
	case KindConnRefused, KindDial, KindNoResponse:
		return true
	default:
		return false
	}
}

func (c *Client) fail(req *Request, attempts int, kind Kind, cause error) *Error {
	return &Error{
		Kind:     kind,
		Endpoint: req.Endpoint,
		Method:   req.Method,
		URL:      redactURL(req.URL),
		Attempts: attempts,
		Cause:    cause,
	}
}

func (c *Client) observe(req *Request, attempt, status int, start time.Time, ok bool, failure string) {
	elapsed := time.Since(start)
	c.metrics.ObserveAttempt(req.Endpoint, ok, elapsed)

	kv := []interface{}{
		"endpoint", req.Endpoint,
		"method", req.Method,
		"url", redactURL(req.URL),
		"attempt", attempt,
		"duration", elapsed,
	}
	if status != 0 {
		kv = append(kv, "status", status)
	}
	if failure != "" {
		kv = append(kv, "failure", failure)
		c.logger.Warn("http attempt failed", kv...)
		return
	}
	c.logger.Debug("http attempt", kv...)
}

// readLimited reads at most limit bytes and fails if the body is larger.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return data, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > limit {
		return data[:limit], fmt.Errorf("response exceeded maximum size of %d bytes", limit)
	}
	return data, nil
}

// redactURL drops userinfo and query values before a URL reaches a log.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
