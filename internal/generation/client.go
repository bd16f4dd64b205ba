// Package generation provides text generation via langchaingo.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrInvalidConfig indicates invalid configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Client is the opaque text-generation contract: a prompt in, a string out.
// Implementations must honor context cancellation.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for the OpenAI generation client.
type Config struct {
	// BaseURL is the OpenAI-compatible chat completion endpoint.
	BaseURL string

	// Model is the generation model name.
	Model string

	// APIKey authenticates against the endpoint.
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float64

	// Timeout bounds a single generation call. The zero value disables
	// the bound, which callers should avoid outside of tests.
	Timeout time.Duration
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAIClient implements Client using langchaingo's OpenAI bindings.
type OpenAIClient struct {
	llm    *openai.LLM
	config Config
}

// NewOpenAIClient creates a generation client with the given configuration.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithModel(config.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &OpenAIClient{
		llm:    llm,
		config: config,
	}, nil
}

// Generate produces a completion for the prompt, bounded by the configured
// timeout. A timeout surfaces as a context error for the caller to treat as
// a generation failure.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(c.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}
	return answer, nil
}

// Ensure OpenAIClient implements Client.
var _ Client = (*OpenAIClient)(nil)
