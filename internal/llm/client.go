// Package llm is a minimal client for OpenAI-compatible chat completion
// endpoints. It exposes a single blocking Chat call with bounded retries.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/spiffcs/repofinder/internal/constants"
	"github.com/spiffcs/repofinder/internal/log"
)

// ErrNotConfigured is returned by Chat when no API key is available.
var ErrNotConfigured = errors.New("LLM API key not configured")

// Chatter sends one system+user prompt pair and returns the reply text.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion returned %d: %s", e.StatusCode, e.Body)
}

// Options configures a Client. Zero values use the package defaults.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	Temperature    float64
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

// Client talks to a chat completions endpoint.
type Client struct {
	http           *resty.Client
	model          string
	temperature    float64
	maxRetries     int
	initialBackoff time.Duration
	// apiKey is intentionally unexported and never logged.
	apiKey string
}

// Ensure Client implements Chatter.
var _ Chatter = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultLLMBaseURL
	}
	model := opts.Model
	if model == "" {
		model = constants.DefaultLLMModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultLLMTimeout
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	initial := opts.InitialBackoff
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", constants.UserAgent).
		SetTimeout(timeout)
	if opts.APIKey != "" {
		httpClient.SetAuthToken(opts.APIKey)
	}

	return &Client{
		http:           httpClient,
		model:          model,
		temperature:    opts.Temperature,
		maxRetries:     retries,
		initialBackoff: initial,
		apiKey:         opts.APIKey,
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Chat sends the prompts and returns the trimmed reply. Rate limiting,
// server errors and network failures are retried with exponential backoff;
// other statuses fail immediately.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}

	var reply string
	attempt := 0
	operation := func() error {
		attempt++
		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(&body).
			Post("/chat/completions")
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			log.Debug("chat request failed", "attempt", attempt, "error", err)
			return fmt.Errorf("chat request: %w", err)
		}

		status := resp.StatusCode()
		if status != http.StatusOK {
			statusErr := &StatusError{StatusCode: status, Body: truncate(resp.String(), 512)}
			if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
				log.Debug("chat request retryable status", "attempt", attempt, "status", status)
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		var parsed chatResponse
		if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode chat response: %w", err))
		}
		if len(parsed.Choices) == 0 {
			return backoff.Permanent(errors.New("chat response contained no choices"))
		}

		reply = strings.TrimSpace(parsed.Choices[0].Message.Content)
		log.Debug("chat completion", "model", c.model, "attempt", attempt, "duration", time.Since(start))
		log.Trace("chat reply", "content", reply)
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialBackoff
	exp.Multiplier = 2
	exp.Reset()
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return reply, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
