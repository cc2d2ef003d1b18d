// Package llm wraps the chat-completion API used by the analysis pipeline.
// One Client is shared across requests; the underlying connection pool is
// safe for concurrent use.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"meeting-minutes-go/internal/logger"
)

// chatAPI is the slice of the OpenAI client we use, mockable in tests.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// CallTimeout bounds a single attempt, not the whole retry budget.
	CallTimeout time.Duration
	// MaxAttempts is the total number of attempts per call (default 3).
	MaxAttempts int
}

type Client struct {
	cfg Config
	api chatAPI
	log *logger.Logger
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 90 * time.Second
	}
	return &Client{
		cfg: cfg,
		api: openai.NewClientWithConfig(oc),
		log: logger.New(),
	}
}

// Complete sends one system+user exchange and returns the assistant text
// with surrounding code fences stripped. Transient failures (429, 5xx,
// network) are retried with exponential backoff up to MaxAttempts; auth
// and other client errors fail immediately.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	log := c.log.WithComponent("llm")

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	}

	var content string
	attempt := 0
	op := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, req)
		if err != nil {
			if !retryable(err) {
				log.WithError(err).Warn("model call failed permanently")
				return backoff.Permanent(err)
			}
			log.WithError(err).WithField("attempt", attempt).Warn("model call failed, will retry")
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("model returned no choices")
		}
		content = stripFences(resp.Choices[0].Message.Content)
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxAttempts-1))
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("model call failed after %d attempts: %w", attempt, err)
	}
	return content, nil
}

// retryable classifies an API error: rate limits, server errors and
// network problems are transient; auth and request errors are not.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Unknown transport-level failure: retry.
	return !errors.Is(err, context.Canceled)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
