package provider

import (
	"chatrelay/config"
	"chatrelay/model"
)

// InitializeProviders builds the fallback chain from configuration.
//
// This function is the single entry point for provider initialization.
// It handles:
//   - Walking the enabled chain entries in priority order
//   - Loading API keys from the credential store (env first, then file)
//   - Applying the shared system instruction and sampling settings
//   - Graceful degradation: an entry that cannot be built becomes an
//     UnavailableProvider in the same position instead of failing startup
//
// The returned slice has one element per enabled entry, in config order.
func InitializeProviders(cfg *config.Config) []model.Provider {
	entries := cfg.EnabledProviders()
	providers := make([]model.Provider, 0, len(entries))

	for _, providerCfg := range entries {
		apiKey := ""
		if cfg.CredentialStore != nil {
			apiKey = cfg.CredentialStore.Get(providerCfg.ID)
		}

		providerType := MapProviderIDToType(providerCfg.ID)

		p, err := NewProvider(Config{
			Type:              providerType,
			BaseURL:           providerCfg.BaseURL,
			Model:             providerCfg.Model,
			APIKey:            apiKey,
			Timeout:           providerCfg.Timeout,
			SystemInstruction: cfg.SystemInstruction,
			MaxOutputTokens:   cfg.MaxOutputTokens,
			Temperature:       cfg.Temperature,
		})
		if err != nil {
			// Keep the slot so listings show the whole chain.
			config.Logger.Warn("[Provider] unavailable", "provider", providerCfg.ID, "error", err)
			providers = append(providers, NewUnavailableProvider(providerCfg.ID, providerCfg.Model, err))
			continue
		}

		providers = append(providers, p)
		if config.Debug {
			config.Logger.Debug("[Provider] initialized", "provider", providerCfg.ID, "model", p.Model(), "type", providerType)
		}
	}

	return providers
}
