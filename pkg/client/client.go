// Package client provides the CyberShield scanning service client.
//
// Reads (history, stats, analytics) are retried with backoff on transient
// failures. Scans, history clears and reports are sent exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cybershieldio/sdk/pkg/core"
	sdkerrors "github.com/cybershieldio/sdk/pkg/errors"
	"github.com/cybershieldio/sdk/pkg/metrics"
	"github.com/cybershieldio/sdk/pkg/retry"
)

// Client talks to the CyberShield scanning service.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	backoff    *retry.BackoffConfig
	limiter    *rate.Limiter
	logger     core.Logger
	metrics    metrics.Collector
}

// Config holds client configuration.
type Config struct {
	BaseURL    string        `yaml:"base_url" json:"base_url"`
	APIKey     string        `yaml:"api_key" json:"api_key"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries"` // Retries for reads only
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
	RateLimit  float64       `yaml:"rate_limit" json:"rate_limit"` // Requests per second, 0 = unlimited
	RateBurst  int           `yaml:"rate_burst" json:"rate_burst"`
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
	Verbose    bool          `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns default client config.
func DefaultConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		MaxRetries: retry.DefaultMaxRetries,
		RetryDelay: retry.DefaultBaseInterval,
		RateBurst:  1,
	}
}

// New creates a client from cfg. Zero timeout and retry delay take their
// defaults; a negative MaxRetries disables read retries.
func New(cfg *Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = retry.DefaultBaseInterval
	}

	backoff := retry.DefaultBackoffConfig()
	backoff.BaseInterval = cfg.RetryDelay
	backoff.MaxRetries = max(cfg.MaxRetries, 0)

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		backoff:    backoff,
		logger:     core.LoggerFromVerbose(core.AppName, cfg.Verbose),
		metrics:    &metrics.NopCollector{},
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent == "" {
		c.userAgent = core.AppName + "-sdk/" + core.AppVersion
	}
	return c
}

// Option is a function that configures the client.
type Option func(*Client)

// NewWithOptions creates a new client using functional options.
// Example:
//
//	c := client.NewWithOptions(
//	    client.WithBaseURL("http://localhost:5000"),
//	    client.WithTimeout(10 * time.Second),
//	    client.WithRateLimit(5, 1),
//	)
func NewWithOptions(opts ...Option) *Client {
	return New(DefaultConfig(), opts...)
}

// WithBaseURL sets the service base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetry sets how often reads are retried and the first backoff delay.
func WithRetry(maxRetries int, retryDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff.MaxRetries = max(maxRetries, 0)
		c.backoff.BaseInterval = retryDelay
	}
}

// WithRateLimit limits outgoing requests to rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithLogger sets the logger.
func WithLogger(l core.Logger) Option {
	return func(c *Client) {
		c.logger = core.OrNop(l)
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = metrics.OrNop(m)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON issues a GET with read retries and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return retry.Do(ctx, c.backoff, func(ctx context.Context) error {
		data, err := c.doRequest(ctx, op, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, out); err != nil {
			return sdkerrors.E(sdkerrors.KindDecode, op, "decode response", err)
		}
		return nil
	}, func(attempt int, err error) {
		c.logger.Debug("%s: retry %d/%d after %v", op, attempt, c.backoff.MaxRetries, err)
		c.metrics.CounterInc(metrics.ClientRetriesTotal.Name, "endpoint", endpointLabel(path))
	})
}

// doRequest performs a single HTTP request and returns the body of a 2xx
// response. Every failure is an *errors.Error with a kind.
func (c *Client) doRequest(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, sdkerrors.E(op, sdkerrors.ErrMissingBaseURL)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, sdkerrors.E(sdkerrors.KindInvalidInput, op, "marshal request", err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, sdkerrors.E(sdkerrors.KindRateLimit, op, "rate limiter", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, sdkerrors.E(sdkerrors.KindInvalidInput, op, "create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	endpoint := endpointLabel(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordRequest(c.metrics, method, endpoint, 0, time.Since(start))
		return nil, transportError(ctx, op, err)
	}
	defer resp.Body.Close()
	metrics.RecordRequest(c.metrics, method, endpoint, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: string(data), RequestID: requestID}
		c.logger.Debug("%s %s: %v", method, path, httpErr)
		return nil, sdkerrors.E(sdkerrors.KindFromStatus(resp.StatusCode), op, httpErr)
	}
	return data, nil
}

func transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return sdkerrors.E(sdkerrors.KindTimeout, op, "request aborted", ctx.Err())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return sdkerrors.E(sdkerrors.KindTimeout, op, "request timed out", err)
	}
	return sdkerrors.E(sdkerrors.KindNetwork, op, "http request", err)
}

// endpointLabel strips the query string for metric labels.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// HTTPError represents a non-2xx response.
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if e.RequestID != "" {
		return fmt.Sprintf("http %d: %s (request_id: %s)", e.StatusCode, body, e.RequestID)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// IsHTTPError checks if err is an HTTPError and returns it.
func IsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
