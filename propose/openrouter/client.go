// Package openrouter implements propose.Proposer against the OpenRouter chat
// completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/httpclient"
	"github.com/underthemoss/construction-taxonomy/internal/util"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/propose"
)

const (
	// DefaultModel is used when none is configured
	DefaultModel = "openai/gpt-4o-mini"
	// DefaultBaseURL is the public OpenRouter endpoint
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultRequestsPerMinute throttles one client
	DefaultRequestsPerMinute = 20
	// DefaultTemperature and DefaultMaxTokens apply when unset
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1000

	maxRetries = 3
)

// Config holds client configuration
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Temperature       *float64 // nil = DefaultTemperature
	MaxTokens         *int     // nil = DefaultMaxTokens
	RequestsPerMinute int      // 0 = DefaultRequestsPerMinute, negative = unlimited
	Timeout           time.Duration
	Logger            *zap.SugaredLogger
}

// Client talks to OpenRouter
type Client struct {
	config     Config
	baseURL    string
	httpClient *httpclient.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	logger     *zap.SugaredLogger
}

var _ propose.Proposer = (*Client)(nil)

// NewClient creates a client, filling unset config with defaults
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Temperature == nil {
		config.Temperature = util.Ptr(DefaultTemperature)
	}
	if config.MaxTokens == nil {
		config.MaxTokens = util.Ptr(DefaultMaxTokens)
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	limit := rate.Limit(float64(DefaultRequestsPerMinute) / 60)
	switch {
	case config.RequestsPerMinute > 0:
		limit = rate.Limit(float64(config.RequestsPerMinute) / 60)
	case config.RequestsPerMinute < 0:
		limit = rate.Inf
	}

	return &Client{
		config:     config,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.New(httpclient.Options{Timeout: config.Timeout}),
		limiter:    rate.NewLimiter(limit, 1),
		retryDelay: time.Second,
		logger:     logger.OrNop(config.Logger),
	}
}

// IsConfigured reports whether an API key is set
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SetHTTPClient replaces the HTTP client. Tests use it to reach httptest
// servers on loopback.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = httpclient.Wrap(hc)
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body of POST /chat/completions
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is the subset of the reply the client reads
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage is token accounting
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StatusError is a non-200 API reply
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// CreateChatCompletion sends one request without retries
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("X-Title", "construction-taxonomy")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithStack(&StatusError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	var out ChatCompletionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal response")
	}
	return &out, nil
}

// Chat sends a system and user prompt and returns the reply text. Network
// failures, 429 and 5xx replies are retried; every attempt waits on the
// client's rate limiter.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if !c.IsConfigured() {
		return "", errors.WithHint(
			errors.Mark(errors.New("OpenRouter API key not configured"), errors.ErrNotConfigured),
			"set OPENROUTER_API_KEY or proposer.api_key",
		)
	}

	req := ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    []Message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		Temperature: *c.config.Temperature,
		MaxTokens:   *c.config.MaxTokens,
	}
	c.logger.Debugw("proposer request",
		"model", req.Model,
		"temperature", req.Temperature,
		"max_tokens", req.MaxTokens,
		"prompt_bytes", len(user))

	var (
		resp *ChatCompletionResponse
		err  error
	)
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryDelay
			c.logger.Debugw("retrying proposer request", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
		if werr := c.limiter.Wait(ctx); werr != nil {
			return "", errors.Wrap(werr, "rate limit")
		}

		resp, err = c.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		c.logger.Warnw("proposer API error",
			"attempt", attempt+1,
			logger.FieldError, err,
			"model", req.Model)
		if !retryable(err) {
			return "", errors.Wrap(err, "OpenRouter API error")
		}
	}
	if err != nil {
		return "", errors.Wrapf(err, "OpenRouter API error after %d attempts", maxRetries)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices from OpenRouter")
	}

	c.logger.Debugw("proposer response",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Propose asks the model for new attribute definitions
func (c *Client) Propose(ctx context.Context, req propose.Request) (map[string]map[string]any, error) {
	prompt, err := propose.UserPrompt(req)
	if err != nil {
		return nil, err
	}
	content, err := c.Chat(ctx, propose.SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	proposals, err := propose.ParseResponse(content)
	if err != nil {
		return nil, err
	}
	c.logger.Infow("proposals received", logger.FieldCount, len(proposals))
	return proposals, nil
}

// retryable reports whether err is a transient network failure or a
// throttled or failing upstream.
func retryable(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode == http.StatusTooManyRequests || status.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT} {
		if errors.Is(err, errno) {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection reset by peer", "connection refused", "timeout", "temporary failure", "network is unreachable"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
