package provider

import (
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// NewOpenRouterProvider creates an OpenAIProvider pointed at OpenRouter,
// which is OpenAI-compatible.
//
// Parameters:
//   - cfg.BaseURL: OpenRouter API base URL (default: "https://openrouter.ai/api/v1")
//   - cfg.APIKey: OpenRouter API key (required)
//   - cfg.Model: model to use (default: "meta-llama/llama-3.2-90b-instruct")
//
// Differences from plain OpenAI: the system instruction is sent as a
// priming exchange (OpenRouterDialect), the output cap uses max_tokens,
// and requests carry an X-Title header for OpenRouter's app attribution.
func NewOpenRouterProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenRouter API key is required (OPENROUTER_API_KEY)", ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = "meta-llama/llama-3.2-90b-instruct" // Default model
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHeader("X-Title", "chatrelay"),
		option.WithMaxRetries(0),
	)

	cfg.Type = ProviderTypeOpenRouter
	return &OpenAIProvider{
		name:            string(ProviderTypeOpenRouter),
		client:          client,
		model:           cfg.Model,
		dialect:         OpenRouterDialect,
		timeout:         cfg.timeout(),
		system:          cfg.SystemInstruction,
		maxTokens:       int64(cfg.maxOutputTokens()),
		temperature:     cfg.Temperature,
		legacyMaxTokens: true,
	}, nil
}
