// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent is the HTTP client for the ZUS agent /ask endpoint.
//
// The endpoint is stateless: every request carries the whole thread as a
// list of strings, alternating human and AI turns starting with the human.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/logging"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds one /ask round trip. Tool-using answers are slow.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 4 * 1024 * 1024

	userAgent = "zuschat/1.0"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCancelled is returned when the caller stopped the request.
	ErrCancelled = errors.New("response generation stopped")
	// ErrTimeout is returned when the request ran past its deadline.
	ErrTimeout = errors.New("agent request timed out")
	// ErrNoAPIKey is returned when Ask is called without a key.
	ErrNoAPIKey = errors.New("API key is required")
	// ErrEmptyThread is returned when there is nothing to send.
	ErrEmptyThread = errors.New("no messages to send")
)

// AgentError is a failure reported by the agent service, either as a
// non-2xx status or as a {"status":"error"} body.
type AgentError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Status != 0 && e.Status != http.StatusOK {
		return fmt.Sprintf("agent error (HTTP %d): %s", e.Status, e.Message)
	}
	return "agent error: " + e.Message
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the /ask body.
type Request struct {
	APIKey   string   `json:"api_key"`
	Messages []string `json:"messages"`
}

// Response is the /ask reply.
type Response struct {
	Status      string  `json:"status"`
	Answer      string  `json:"answer"`
	ElapsedTime float64 `json:"elapsed_time"`
	Error       string  `json:"error,omitempty"`
}

// Elapsed returns the server-side processing time.
func (r *Response) Elapsed() time.Duration {
	return time.Duration(r.ElapsedTime * float64(time.Second))
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one /ask endpoint. It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client for the given /ask URL.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zap.NewNop(),
	}
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the HTTP client (tests use httptest clients).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRateLimit spaces requests to at most perMinute per minute with a
// burst of one. Zero disables throttling.
func (c *Client) WithRateLimit(perMinute int) *Client {
	if perMinute <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	return c
}

// WithLogger sets the logger.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// URL returns the endpoint.
func (c *Client) URL() string {
	return c.url
}

// Ask sends the thread and returns the agent's reply. It does not retry;
// a stop must take effect immediately.
func (c *Client) Ask(ctx context.Context, apiKey string, messages []string) (*Response, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if len(messages) == 0 {
		return nil, ErrEmptyThread
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, mapContextErr(ctx, err)
			}
			// The next token arrives after the deadline.
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}

	body, err := json.Marshal(Request{APIKey: apiKey, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	c.logger.Debug("agent request",
		zap.String("url", c.url),
		zap.Int("messages", len(messages)),
		logging.Secret("api_key", apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := mapContextErr(ctx, err); ctxErr != err {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, mapContextErr(ctx, err)
	}
	c.logger.Info("agent response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(data)))

	return decodeResponse(resp.StatusCode, data)
}

// decodeResponse maps a status and body to a Response or an AgentError.
func decodeResponse(status int, data []byte) (*Response, error) {
	var out Response
	parseErr := json.Unmarshal(data, &out)

	if status < 200 || status > 299 {
		msg := strings.TrimSpace(string(data))
		if parseErr == nil && out.Error != "" {
			msg = out.Error
		} else if parseErr == nil && out.Answer != "" {
			msg = out.Answer
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, &AgentError{Status: status, Message: msg}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", parseErr)
	}
	if out.Error != "" {
		return nil, &AgentError{Status: status, Message: out.Error}
	}
	if strings.EqualFold(out.Status, "error") {
		return nil, &AgentError{Status: status, Message: out.Answer}
	}
	out.Answer = strings.TrimSpace(out.Answer)
	return &out, nil
}

// readResponse reads the response body with size limits to prevent memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// mapContextErr turns context failures into ErrCancelled or ErrTimeout and
// returns other errors unchanged.
func mapContextErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return ErrCancelled
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return ErrTimeout
	}
	return err
}
