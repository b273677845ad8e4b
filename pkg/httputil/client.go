// Package httputil provides the default Transport implementation for the
// postgrest resource client: one HTTP round-trip per request, JSON in and
// out, with optional exponential-backoff retry for transient failures.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datrium/postgrest-go/pkg/metrics"
	"github.com/datrium/postgrest-go/pkg/postgrest"
)

// RequestIDHeader carries a per-request id for correlating client and
// server logs.
const RequestIDHeader = "X-Request-Id"

// Client is an http.Client wrapper implementing postgrest.Transport.
// Retry, when enabled, covers network failures and 5xx responses only;
// 4xx responses are returned immediately so the resource client can
// interpret conflicts.
type Client struct {
	httpClient     *http.Client
	headers        map[string][]string
	token          string
	prefer         Prefer
	logger         *zap.Logger
	retryEnabled   bool
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sets a bearer token sent as the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = append(c.headers[key], value)
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry enables exponential-backoff retry for transient failures.
func WithRetry(maxRetries int, initial, max time.Duration) Option {
	return func(c *Client) {
		c.retryEnabled = true
		c.maxRetries = maxRetries
		c.initialBackoff = initial
		c.maxBackoff = max
	}
}

// WithPrefer overrides the Prefer header sent on mutating requests.
func WithPrefer(p Prefer) Option {
	return func(c *Client) {
		c.prefer = p
	}
}

// NewClient creates a Client with sensible defaults: 5s timeout, no retry,
// Prefer: return=representation on mutating requests.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		headers:    make(map[string][]string),
		prefer:     DefaultPrefer,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request implements postgrest.Transport. Non-2xx responses are returned as
// *postgrest.StatusError, network failures as *postgrest.TransportError.
func (c *Client) Request(ctx context.Context, method, url string, params postgrest.QueryParams, body any) (json.RawMessage, error) {
	payload, err := marshalBody(body)
	if err != nil {
		return nil, err
	}

	if qs := params.Encode(); qs != "" {
		url = url + "?" + qs
	}

	operation := func() (json.RawMessage, error) {
		return c.doRequest(ctx, method, url, payload)
	}

	if !c.retryEnabled {
		return operation()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	b.MaxElapsedTime = time.Duration(c.maxRetries) * c.maxBackoff

	return backoff.RetryWithData(func() (json.RawMessage, error) {
		raw, err := operation()
		if err != nil && !isRetryable(err) {
			return raw, backoff.Permanent(err)
		}
		if err != nil {
			c.logger.Debug("retrying request",
				zap.String("method", method),
				zap.String("url", url),
				zap.Error(err))
		}
		return raw, err
	}, backoff.WithContext(b, ctx))
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte) (json.RawMessage, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set(RequestIDHeader, uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if isMutating(method) {
		req.Header.Set("Content-Type", "application/json")
		if prefer := c.prefer.String(); prefer != "" {
			req.Header.Set("Prefer", prefer)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, 0, time.Since(start))
		return nil, &postgrest.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
		return nil, &postgrest.TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &postgrest.StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	return json.RawMessage(respBody), nil
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	switch v := body.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return payload, nil
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// isRetryable reports whether err is worth retrying: network failures and
// server-side 5xx. Client errors like 404 and 409 carry meaning for the
// resource client and must surface immediately.
func isRetryable(err error) bool {
	var se *postgrest.StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	var te *postgrest.TransportError
	return errors.As(err, &te)
}
