package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Config holds the settings for the OpenAI-compatible provider.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	Timeout        time.Duration
}

// Prompt is a single-shot request: optional system instructions plus the user message.
type Prompt struct {
	System string
	User   string
	JSON   bool
}

// Client talks to the generative and embedding models through langchaingo.
// A Client built without an API key is valid; every call then fails with
// ErrNotConfigured so handlers can answer 503 at call time.
type Client struct {
	llm            *openai.LLM
	chatModel      string
	embeddingModel string
	temperature    float64
	limiter        *RateLimiter
	logger         *slog.Logger
}

// NewClient creates the provider client. limiter may be nil.
func NewClient(cfg Config, limiter *RateLimiter) (*Client, error) {
	c := &Client{
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    cfg.Temperature,
		limiter:        limiter,
		logger:         slog.Default().With("component", "ai-client"),
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		c.logger.Warn("no api key configured, AI features disabled")
		return c, nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var transport http.RoundTripper = http.DefaultTransport
	if limiter != nil {
		transport = &rateLimitTransport{next: transport, limiter: limiter}
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.ChatModel),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithHTTPClient(&http.Client{Timeout: timeout, Transport: transport}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ai: create client: %w", err)
	}
	c.llm = llm
	return c, nil
}

// Configured reports whether an API key was provided.
func (c *Client) Configured() bool {
	return c != nil && c.llm != nil
}

// EmbeddingModel returns the embedding model name, stored in chunk metadata.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

// Limiter returns the shared rate limiter, if any.
func (c *Client) Limiter() *RateLimiter {
	return c.limiter
}

// Complete sends a single completion request and returns the raw text.
// Completions share the embeddings' rate limiter.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("ai: rate limit: %w", err)
		}
	}

	content := make([]llms.MessageContent, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, p.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, p.User))

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if p.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	c.logger.Debug("completion request", "model", c.chatModel, "prompt_len", len(p.User), "json", p.JSON)
	resp, err := c.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("ai: completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// CompleteJSON asks for a JSON answer and decodes it into out.
// Decoding failures return *ModelFormatError with the raw output.
func (c *Client) CompleteJSON(ctx context.Context, p Prompt, out any) (string, error) {
	p.JSON = true
	raw, err := c.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	cleaned := StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		c.logger.Warn("invalid JSON from model", "err", err)
		return raw, &ModelFormatError{Raw: raw, Err: err}
	}
	return cleaned, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	vectors, err := c.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ai: embedding: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vectors[0], nil
}

// StripCodeFences removes markdown ``` fences models like to wrap JSON in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
