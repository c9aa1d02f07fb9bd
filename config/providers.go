package config

import (
	"fmt"
	"time"

	"github.com/sahilm/fuzzy"
)

// KnownProviderIDs lists every provider ID the factory can build, in default priority order.
var KnownProviderIDs = []string{"gemini", "anthropic", "openai", "openrouter", "ollama"}

// DefaultProviders returns the default fallback chain.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{ID: "gemini", Enabled: true, Model: "gemini-2.5-flash", Timeout: 30 * time.Second},
		{ID: "anthropic", Enabled: true, Timeout: 30 * time.Second},
		{ID: "openai", Enabled: true, Timeout: 20 * time.Second},
		{ID: "openrouter", Enabled: true, Timeout: 25 * time.Second},
		{ID: "ollama", Enabled: false, Timeout: 15 * time.Second},
	}
}

// ValidateProviders checks that every chain entry names a known provider
// exactly once. Unknown IDs get a "did you mean" hint.
func ValidateProviders(ps []ProviderConfig) error {
	seen := make(map[string]bool, len(ps))
	for i, id := range providerIDs(ps) {
		if id == "" {
			return fmt.Errorf("providers[%d]: id is required", i)
		}
		if !isKnownProvider(id) {
			if suggestion := SuggestProviderID(id); suggestion != "" {
				return fmt.Errorf("providers[%d]: unknown provider %q (did you mean %q?)", i, id, suggestion)
			}
			return fmt.Errorf("providers[%d]: unknown provider %q", i, id)
		}
		if seen[id] {
			return fmt.Errorf("providers[%d]: provider %q listed twice", i, id)
		}
		seen[id] = true
		if ps[i].Timeout < 0 {
			return fmt.Errorf("providers[%d]: timeout must not be negative", i)
		}
	}
	return nil
}

// SuggestProviderID returns the closest known provider ID for a mistyped one,
// or "" when nothing is close.
func SuggestProviderID(id string) string {
	matches := fuzzy.Find(id, KnownProviderIDs)
	if len(matches) > 0 {
		return matches[0].Str
	}
	return ""
}

func isKnownProvider(id string) bool {
	for _, known := range KnownProviderIDs {
		if id == known {
			return true
		}
	}
	return false
}

// ProviderDisplayName returns the display name for a provider
func ProviderDisplayName(providerID string) string {
	switch providerID {
	case "gemini":
		return "Google Gemini"
	case "ollama":
		return "Ollama"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	default:
		return providerID
	}
}

// ProviderDefaultBaseURL returns the default base URL for a provider
func ProviderDefaultBaseURL(providerID string) string {
	switch providerID {
	case "gemini":
		return "https://generativelanguage.googleapis.com/"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}

// ProviderEnvVar returns the environment variable holding a provider's API key.
func ProviderEnvVar(providerID string) string {
	switch providerID {
	case "gemini":
		return "GEMINI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}
