// Package notion is a minimal client for the hierarchical document API:
// block retrieval, paginated child listing, and batched child creation.
//
// The client retries rate-limited requests with exponential backoff and a
// bounded attempt count, surfacing ErrRateLimited once the budget is
// exhausted. All other API errors propagate immediately.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/c360studio/blockclone/block"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// DefaultVersion pins the wire format the client understands.
	DefaultVersion = "2022-06-28"

	// MaxPageSize is the largest child page the list endpoint allows.
	MaxPageSize = 100

	// MaxAppendChildren is the hard cap on payloads per creation call.
	MaxAppendChildren = 50
)

// maxResponseSize bounds response bodies to prevent memory exhaustion.
const maxResponseSize = 4 * 1024 * 1024 // 4MB

// Client talks to the document API.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithVersion overrides the API version header.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig sets the rate-limit retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches request instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client authenticated with the given integration token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		version: DefaultVersion,
		retry:   DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBlock fetches a single block by id.
func (c *Client) GetBlock(ctx context.Context, id string) (*block.Block, error) {
	var b block.Block
	if err := c.do(ctx, "get_block", http.MethodGet, "/blocks/"+id, nil, nil, &b); err != nil {
		return nil, fmt.Errorf("get block %s: %w", id, err)
	}
	return &b, nil
}

// ListChildren fetches all direct children of a block, in order, draining
// the paginated listing.
func (c *Client) ListChildren(ctx context.Context, id string) ([]block.Block, error) {
	var children []block.Block
	pager := c.Children(id)
	for pager.HasMore() {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		children = append(children, page...)
	}
	return children, nil
}

// HasAnyChildren probes whether a block has at least one child with a
// single-item listing. Some container types under-report has_children in
// the block envelope; this is the cheap way to double-check.
func (c *Client) HasAnyChildren(ctx context.Context, id string) (bool, error) {
	page, err := c.Children(id).WithPageSize(1).Next(ctx)
	if err != nil {
		return false, err
	}
	return len(page) > 0, nil
}

// AppendResult reports the blocks a creation call produced. New ids are
// assigned by the server; the engine never reuses or guesses them.
type AppendResult struct {
	Results []block.Block `json:"results"`
}

// AppendChildren creates the given payloads, in order, as children of the
// destination block. The API caps a single call at MaxAppendChildren
// payloads; larger writes must be chunked by the caller.
func (c *Client) AppendChildren(ctx context.Context, id string, children []*block.CreatePayload) (*AppendResult, error) {
	if len(children) == 0 {
		return &AppendResult{}, nil
	}
	if len(children) > MaxAppendChildren {
		return nil, fmt.Errorf("append to %s: %d children exceeds the %d per-call limit", id, len(children), MaxAppendChildren)
	}

	body := map[string]any{"children": children}
	var result AppendResult
	if err := c.do(ctx, "append_children", http.MethodPatch, "/blocks/"+id+"/children", nil, body, &result); err != nil {
		return nil, fmt.Errorf("append to %s: %w", id, err)
	}
	return &result, nil
}

// do executes one API request with the rate-limit retry loop. Only 429
// responses are retried; everything else surfaces immediately. endpoint
// is the logical operation name used for metrics and logs, kept free of
// block ids.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		err := c.doOnce(ctx, method, target, payload, out)
		c.metrics.observe(endpoint, err)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		c.metrics.observeRateLimit()

		if attempt == c.retry.MaxAttempts {
			break
		}

		backoff := c.backoff(attempt, err)
		c.logger.Debug("rate limited, backing off",
			"endpoint", endpoint,
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"backoff", backoff)
		c.metrics.observeRetry()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("retry budget exhausted after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, target string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// apiError decodes an error response body into an APIError.
func (c *Client) apiError(resp *http.Response, body []byte) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.Code = wire.Code
		apiErr.Message = wire.Message
	}
	if apiErr.Message == "" {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		apiErr.Message = msg
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}

// backoff computes the sleep before the next attempt: the server's
// Retry-After when provided, otherwise exponential backoff with jitter.
// Either way the sleep is capped at MaxBackoff.
func (c *Client) backoff(attempt int, err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		if apiErr.RetryAfter > c.retry.MaxBackoff {
			return c.retry.MaxBackoff
		}
		return apiErr.RetryAfter
	}

	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retry.BackoffMultiplier
	}
	backoff := time.Duration(float64(c.retry.BackoffBase) * multiplier)
	if backoff > c.retry.MaxBackoff {
		backoff = c.retry.MaxBackoff
	}

	// +/- 25% jitter to avoid synchronized retries across jobs.
	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}
