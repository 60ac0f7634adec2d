// Package openai implements llm.Client over the OpenAI chat completions
// protocol. xAI Grok speaks the same protocol, so the Grok client is the
// same code pointed at a different base URL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/rankonai/seoscope/internal/llm"
	"github.com/rankonai/seoscope/internal/metrics"
)

const (
	// DefaultOpenAIModel is used when a request names no model.
	DefaultOpenAIModel = "gpt-4o"
	// DefaultGrokModel is used by the Grok client when a request names
	// no model.
	DefaultGrokModel = "grok-beta"

	grokBaseURL = "https://api.x.ai/v1"

	defaultTimeout     = 120 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 2500

	defaultMaxRetries  = 3
	defaultBaseBackoff = 2 * time.Second
	defaultMaxBackoff  = 32 * time.Second
)

// Config carries provider credentials and call defaults.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int64
}

// Client calls a chat completions endpoint with exponential backoff on
// rate limits.
type Client struct {
	name string
	cfg  Config
	api  openai.Client

	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// NewOpenAI builds a client for the OpenAI platform.
func NewOpenAI(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	return newClient("openai", cfg)
}

// NewGrok builds a client for xAI Grok.
func NewGrok(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = grokBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGrokModel
	}
	return newClient("grok", cfg)
}

func newClient(name string, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Backoff lives in this package; the SDK retry layer stays off.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		name:        name,
		cfg:         cfg,
		api:         openai.NewClient(opts...),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Complete performs a single chat completion. Rate-limited calls are
// retried with exponential backoff; other API errors fail immediately.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%s: %w", c.name, llm.ErrNotConfigured)
	}

	start := time.Now()
	content, err := c.complete(ctx, req)
	metrics.ObserveLLMCall(c.name, err == nil, time.Since(start))
	return content, err
}

func (c *Client) complete(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	params := c.params(req)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%s completion: %w", c.name, ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}

		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				continue
			}
			return "", fmt.Errorf("%s completion: %w", c.name, err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%s completion: no choices returned", c.name)
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%s completion: retries exhausted: %w", c.name, lastErr)
}

// CompleteJSON performs a completion and parses the response as a JSON
// object.
func (c *Client) CompleteJSON(ctx context.Context, req llm.Request) (map[string]any, error) {
	raw, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return llm.ParseJSON(raw)
}

func (c *Client) params(req llm.Request) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	return openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseBackoff << (attempt - 1)
	if d > c.maxBackoff {
		d = c.maxBackoff
	}
	return d
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

var _ llm.Client = (*Client)(nil)
