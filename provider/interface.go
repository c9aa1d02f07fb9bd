// Package provider adapts LLM vendors to the relay's single-attempt contract.
//
// chatrelay supports multiple LLM providers (Gemini, Anthropic, OpenAI,
// OpenRouter, Ollama) through the model.Provider interface. Each adapter
// turns a stored transcript plus a new user message into one vendor call
// and classifies what came back, so the relay's fallback chain never has
// to know which vendor it is talking to.
//
// # Request shaping
//
// All adapters build their payload through Normalize, which maps stored
// roles onto the vendor's labels and decides where the system instruction
// goes (see Dialect).
//
// # Outcome classification
//
// Adapters never return errors. Every call ends in a model.Result:
//   - Success: the vendor answered with non-empty text
//   - RateLimited: HTTP 429 or an explicit quota signal
//   - Failure: anything else, tagged transient, client or malformed
//   - Unavailable: the adapter has no credentials and made no call
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.GeminiProvider, AnthropicProvider, OpenAIProvider (also used
//     for OpenRouter) and OllamaProvider implement it
//   - provider.UnavailableProvider stands in for unconfigured vendors
//   - provider.NewProvider() factory creates providers from Config
//   - provider.InitializeProviders() builds the ordered chain from config
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    // handle error
//	}
//	res := p.Attempt(ctx, transcript, "Hello")
package provider

import (
	"errors"
	"time"
)

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOllama     ProviderType = "ollama"
)

// ErrMissingCredentials is wrapped by constructors when the API key (or, for
// Ollama, the host) is not configured.
var ErrMissingCredentials = errors.New("missing credentials")

// ErrEmptyReply is reported when a vendor answers without any text.
var ErrEmptyReply = errors.New("empty reply")

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama

	// Timeout bounds a single Attempt. Zero selects the vendor default.
	Timeout time.Duration

	SystemInstruction string
	MaxOutputTokens   int
	Temperature       float64
}

// DefaultTimeout returns the per-vendor attempt timeout.
func DefaultTimeout(t ProviderType) time.Duration {
	switch t {
	case ProviderTypeGemini, ProviderTypeAnthropic:
		return 30 * time.Second
	case ProviderTypeOpenRouter:
		return 25 * time.Second
	case ProviderTypeOpenAI:
		return 20 * time.Second
	default:
		return 15 * time.Second
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout(c.Type)
}

func (c Config) maxOutputTokens() int {
	if c.MaxOutputTokens > 0 {
		return c.MaxOutputTokens
	}
	return 2048
}
