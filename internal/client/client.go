// Package client talks to a running ArcheoHub server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"archeohub-backend/internal/models"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 4 * time.Second
	DefaultJitter      = 0.5
)

// APIError is a non-2xx reply that was not retried or ran out of attempts.
type APIError struct {
	Status    int
	Message   string
	Code      string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("archeohub: %d %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("archeohub: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the randomization factor applied to each delay; 0.5 spreads
	// a 1s delay over [0.5s, 1.5s].
	Jitter float64
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Jitter:      DefaultJitter,
	}
}

type askBody struct {
	Prompt  string             `json:"prompt"`
	Options models.ChatOptions `json:"options"`
}

// Ask posts one question to /api/chat. Transport failures and 502/503/504
// are retried with capped, jittered exponential backoff; any other
// error status is returned at once as *APIError.
func (c *Client) Ask(ctx context.Context, question string, opts models.ChatOptions) (*models.ChatResponse, error) {
	payload, err := json.Marshal(askBody{Prompt: question, Options: opts})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var out models.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", payload, &out); err != nil {
		return nil, err
	}
	if out.Sources == nil {
		out.Sources = []models.Source{}
	}
	return &out, nil
}

type Health struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	Database  bool   `json:"database"`
	Redis     bool   `json:"redis"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	return backoff.Retry(func() error {
		retry, err := c.once(ctx, method, path, payload, out)
		if err != nil && !retry {
			return backoff.Permanent(err)
		}
		return err
	}, c.newBackOff(ctx))
}

// newBackOff allows MaxAttempts-1 retries, doubling from BaseDelay up to
// MaxDelay, and stops early when ctx is done.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOffContext {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	b.MaxInterval = c.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = c.Jitter
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// once performs a single round trip and reports whether a failure is worth
// retrying.
func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return retryable(resp.StatusCode), decodeAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.RequestID = body.RequestID
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
