package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Headers attached to every delivery attempt.
const (
	// HeaderTaskID carries the task ID so receivers can correlate the
	// notification with the original submission.
	HeaderTaskID = "X-Task-ID"

	// HeaderSource identifies this service as the notification origin.
	HeaderSource = "X-Webhook-Source"

	sourceName = "taskrelay"
)

// Config holds configuration for the delivery client.
type Config struct {
	// MaxAttempts is the total number of POSTs tried per payload.
	MaxAttempts int

	// BaseDelay is the backoff unit; the wait after attempt N is
	// BaseDelay * N. No wait follows the final attempt.
	BaseDelay time.Duration

	// AttemptTimeout bounds each individual HTTP request.
	AttemptTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

// Client posts JSON task results to webhook URLs.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *slog.Logger
}

// NewClient creates a delivery client. Invalid config values fall back to the
// defaults.
func NewClient(config Config, logger *slog.Logger) *Client {
	defaults := DefaultConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = defaults.BaseDelay
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = defaults.AttemptTimeout
	}

	return &Client{
		// The per-attempt timeout is applied via request contexts so a
		// cancelled delivery context also aborts an in-flight POST.
		httpClient: &http.Client{},
		config:     config,
		logger:     logger,
	}
}

// Deliver POSTs the payload to url, retrying transport errors and non-2xx
// responses alike until the attempt budget is spent. The returned error is
// informational: callers must not treat a failed delivery as a failed task.
func (c *Client) Deliver(ctx context.Context, url, taskID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	logger := c.logger.With("task_id", taskID, "url", url)

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		lastErr = c.post(ctx, url, taskID, body)
		if lastErr == nil {
			logger.Info("webhook delivered", "attempt", attempt)
			return nil
		}

		logger.Warn("webhook delivery attempt failed",
			"attempt", attempt,
			"max_attempts", c.config.MaxAttempts,
			"error", lastErr)

		if attempt == c.config.MaxAttempts {
			break
		}

		// Linear backoff: base * attempt number.
		delay := c.config.BaseDelay * time.Duration(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: cancelled during backoff: %v", ErrDeliveryFailed, ctx.Err())
		}
	}

	logger.Error("webhook delivery failed permanently",
		"attempts", c.config.MaxAttempts,
		"error", lastErr)
	return fmt.Errorf("%w after %d attempts: %v", ErrDeliveryFailed, c.config.MaxAttempts, lastErr)
}

// post performs a single delivery attempt.
func (c *Client) post(ctx context.Context, url, taskID string, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTaskID, taskID)
	req.Header.Set(HeaderSource, sourceName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
