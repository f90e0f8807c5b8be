// Package http provides the transport used by the request pipeline. It sends
// already-signed requests and retries only connection failures; HTTP status
// handling, including throttling, is left to the caller.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is a retrying HTTP transport.
type Client struct {
	httpClient   *retryablehttp.Client
	logger       mws.Logger
	debug        bool
	userAgent    string
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	base         *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger mws.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets how often and how long a failed connection is retried.
func WithRetryConfig(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = maxRetries
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.base = client
	}
}

// WithUserAgent sets the User-Agent header sent when the request has none.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a transport.
func NewClient(opts ...Option) *Client {
	client := &Client{
		userAgent:    constants.UserAgent,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		timeout:      constants.DefaultHTTPTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = client.retryMax
	retryClient.RetryWaitMin = client.retryWaitMin
	retryClient.RetryWaitMax = client.retryWaitMax
	retryClient.CheckRetry = connectionErrorsOnly
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	if client.base != nil {
		retryClient.HTTPClient = client.base
	} else {
		retryClient.HTTPClient.Timeout = client.timeout
	}

	client.httpClient = retryClient

	return client
}

// Send performs req. A non-2xx response is returned with a nil error.
func (c *Client) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	retryReq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if retryReq.Header.Get("User-Agent") == "" {
		retryReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    redact(req.URL.String()),
		})
	}

	resp, err := c.httpClient.Do(retryReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   resp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	return resp, nil
}

// connectionErrorsOnly retries failed connections and never a response,
// whatever its status.
func connectionErrorsOnly(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}

	if ctx.Err() != nil {
		return false, ctx.Err() //nolint:wrapcheck // context errors are returned as is
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err) //nolint:wrapcheck // passes through the library's decision
}

// redact hides the request signature from logged URLs.
func redact(raw string) string {
	idx := strings.Index(raw, "Signature=")
	if idx < 0 {
		return raw
	}

	end := strings.IndexByte(raw[idx:], '&')
	if end < 0 {
		return raw[:idx] + "Signature=REDACTED"
	}

	return raw[:idx] + "Signature=REDACTED" + raw[idx+end:]
}

// leveledLogger adapts mws.Logger to retryablehttp's logger. The library's
// per-attempt debug lines are dropped; Send logs each request once.
type leveledLogger struct {
	logger mws.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fields(keysAndValues))
}

func (l *leveledLogger) Debug(string, ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		out[key] = keysAndValues[i+1]
	}

	return out
}
