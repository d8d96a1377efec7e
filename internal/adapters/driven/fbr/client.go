// Package fbr submits invoices to the FBR point-of-sale PostData endpoint.
package fbr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
	"github.com/custodia-labs/dealer-capture/internal/core/ports/driven"
	"github.com/custodia-labs/dealer-capture/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.InvoiceSubmitter = (*Client)(nil)

// SuccessCode is the response code FBR returns for an accepted invoice.
const SuccessCode = "100"

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultRPS         = 2.0

	// maxErrorBody caps how much of an error body ends up in a message.
	maxErrorBody = 512

	// maxRetryAfter caps a server-requested wait.
	maxRetryAfter = 30 * time.Second
)

// Config holds configuration for the FBR client.
type Config struct {
	// Endpoint is the PostData URL (required).
	Endpoint string

	// Token is the bearer token.
	Token string

	// Timeout bounds one HTTP round trip (default: 30s).
	Timeout time.Duration

	// MaxAttempts is the in-call budget for 5xx/429/transport failures (default: 3).
	MaxAttempts int

	// RetryDelay is the first in-call retry wait; it doubles per attempt (default: 500ms).
	RetryDelay time.Duration

	// RequestsPerSecond throttles submissions (default: 2).
	RequestsPerSecond float64
}

// ConfigFromSettings maps resolved application settings onto a client config.
func ConfigFromSettings(s domain.FBRSettings) Config {
	return Config{
		Endpoint:          s.Endpoint,
		Token:             s.Token,
		Timeout:           s.Timeout,
		MaxAttempts:       s.MaxAttempts,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// Client posts invoice payloads to FBR.
type Client struct {
	client      *http.Client
	endpoint    string
	token       string
	maxAttempts int
	retryDelay  time.Duration
	limiter     *rate.Limiter
}

// response is the FBR PostData response body.
type response struct {
	InvoiceNumber string     `json:"InvoiceNumber"`
	Code          codeString `json:"Code"`
	Response      string     `json:"Response"`
	Errors        any        `json:"Errors"`
}

// codeString accepts the response code as a JSON string or number.
type codeString string

func (c *codeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = codeString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = codeString(n.String())
	return nil
}

// NewClient creates a new FBR client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("fbr: endpoint is required: %w", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRPS
	}

	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.Endpoint,
		token:       cfg.Token,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Submit posts one invoice. Retryable failures are retried within the attempt
// budget and then reported wrapping domain.ErrTransient; rejections wrap
// domain.ErrPermanent. A done ctx is returned unwrapped.
func (c *Client) Submit(ctx context.Context, payload domain.InvoicePayload) (*domain.SubmitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %w", domain.ErrPermanent, err)
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		resp, wait, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, errRetryable) {
			return nil, err
		}

		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		if wait <= 0 {
			wait = delay
		}
		logger.Debug("fbr: attempt %d/%d for %s failed: %v; retrying in %s",
			attempt, c.maxAttempts, payload.USIN, err, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}

	return nil, fmt.Errorf("%w: %d attempts: %w", domain.ErrTransient, c.maxAttempts, lastErr)
}

// errRetryable marks a failure worth another in-call attempt.
var errRetryable = errors.New("retryable")

// post performs one round trip. A retryable error may come with a
// server-requested wait.
func (c *Client) post(ctx context.Context, body []byte) (*domain.SubmitResponse, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: create request: %w", domain.ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: send request: %w", errRetryable, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response: %w", errRetryable, err)
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500:
		return nil, retryAfter(httpResp.Header.Get("Retry-After")),
			fmt.Errorf("%w: status %d: %s", errRetryable, httpResp.StatusCode, truncate(raw))
	case httpResp.StatusCode >= 400:
		return nil, 0, fmt.Errorf("%w: status %d: %s", domain.ErrPermanent, httpResp.StatusCode, truncate(raw))
	}

	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// The invoice may have been accepted; resubmitting the same USIN is safe.
		return nil, 0, fmt.Errorf("%w: decode response: %w", errRetryable, err)
	}
	if string(parsed.Code) != SuccessCode {
		return nil, 0, fmt.Errorf("%w: code %s: %s", domain.ErrPermanent, parsed.Code, parsed.message())
	}

	return &domain.SubmitResponse{
		InvoiceNumber: parsed.InvoiceNumber,
		Code:          string(parsed.Code),
		Message:       parsed.Response,
	}, 0, nil
}

// message combines the response text with any error detail.
func (r *response) message() string {
	msg := strings.TrimSpace(r.Response)
	if r.Errors == nil {
		return msg
	}
	detail, err := json.Marshal(r.Errors)
	if err != nil || string(detail) == "null" || string(detail) == `""` {
		return msg
	}
	if msg == "" {
		return string(detail)
	}
	return msg + " " + string(detail)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
