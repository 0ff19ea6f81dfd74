package ai

import (
	"context"
	"time"
)

// AIOptions configures a single GenerateResponse call, adapted from the
// teacher's core.AIOptions shape.
type AIOptions struct {
	Model        string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// TokenUsage mirrors core.TokenUsage.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// AIResponse mirrors core.AIResponse: a raw LLM completion plus usage.
type AIResponse struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// AIClient is the minimal LLM client surface GomindOracle needs, adapted
// from the teacher's core.AIClient / ai.OpenAIClient shape so a real
// backend (OpenAI, Anthropic, etc. — any of the teacher's supported
// providers) can be wired in without this package depending on a concrete
// vendor SDK.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, options *AIOptions) (*AIResponse, error)
}

// Config mirrors the teacher's AIConfig: provider selection plus
// connection/model defaults, set via functional options.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Model       string
	Temperature float32
	MaxTokens   int
}

// Option configures a Config, mirroring the teacher's AIOption pattern.
type Option func(*Config)

// WithProvider sets the provider name (e.g. "openai", "anthropic").
func WithProvider(provider string) Option { return func(c *Config) { c.Provider = provider } }

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option { return func(c *Config) { c.APIKey = key } }

// WithModel sets the model identifier.
func WithModel(model string) Option { return func(c *Config) { c.Model = model } }

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option { return func(c *Config) { c.Temperature = t } }

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option { return func(c *Config) { c.MaxTokens = n } }

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// DefaultConfig mirrors the teacher's hardcoded OpenAI defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-4",
		Temperature: 0.3,
		MaxTokens:   1000,
		Timeout:     30 * time.Second,
	}
}

// NewConfig applies opts over DefaultConfig.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
