package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type HistoryConfig struct {
	// MaxTurns limits how many stored turns are sent to a provider.
	// 0 sends the whole transcript. Stored transcripts are never truncated.
	MaxTurns int `toml:"max_turns"`
}

type AttemptLogConfig struct {
	// Path of the sqlite attempt log. Empty disables it.
	Path string `toml:"path"`
}

type SecurityConfig struct {
	Method     SecurityMethod `toml:"method"`
	SSHKeyPath string         `toml:"ssh_key_path,omitempty"`
}

// ProviderConfig is one entry of the fallback chain. Order in the file is priority order.
type ProviderConfig struct {
	ID      string        `toml:"id"`
	Enabled bool          `toml:"enabled"`
	BaseURL string        `toml:"base_url,omitempty"`
	Model   string        `toml:"model,omitempty"`
	Timeout time.Duration `toml:"timeout,omitempty"`
}

type Config struct {
	Listen            string           `toml:"listen"`
	SystemInstruction string           `toml:"system_instruction"`
	Strict            bool             `toml:"strict"`
	MaxOutputTokens   int              `toml:"max_output_tokens"`
	Temperature       float64          `toml:"temperature"`
	History           HistoryConfig    `toml:"history"`
	AttemptLog        AttemptLogConfig `toml:"attempt_log"`
	Security          SecurityConfig   `toml:"security"`
	Providers         []ProviderConfig `toml:"providers"`

	// Path is the file the config was read from; empty when running on defaults.
	Path string `toml:"-"`
	// CredentialStore resolves API keys. Populated by Load.
	CredentialStore *CredentialStore `toml:"-"`
}

// Dir returns the directory holding config-adjacent files (credentials).
func (c *Config) Dir() string {
	if c.Path != "" {
		return filepath.Dir(c.Path)
	}
	return GetConfigDir()
}

// EnabledProviders returns the enabled chain entries in priority order.
func (c *Config) EnabledProviders() []ProviderConfig {
	var out []ProviderConfig
	for _, p := range c.Providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Listen = ":" + port
	}
	if listen := os.Getenv("CHATRELAY_LISTEN"); listen != "" {
		c.Listen = listen
	}
	if strict := os.Getenv("CHATRELAY_STRICT"); strict != "" {
		if v, err := strconv.ParseBool(strict); err == nil {
			c.Strict = v
		}
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		for i := range c.Providers {
			if c.Providers[i].ID == "ollama" {
				c.Providers[i].BaseURL = host
			}
		}
	}
}

// Load reads the config file at path (or the default location when path is
// empty), applies environment overrides, validates the provider chain and
// loads credentials. A missing file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = GetConfigFilePath()
	}
	path = ExpandPath(path)

	switch {
	case FileExists(path):
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	case explicit:
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg.applyEnvOverrides()

	if err := ValidateProviders(cfg.Providers); err != nil {
		return nil, err
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if cfg.History.MaxTurns < 0 {
		return nil, fmt.Errorf("history.max_turns must be >= 0, got %d", cfg.History.MaxTurns)
	}
	// Windows hold whole exchanges.
	cfg.History.MaxTurns += cfg.History.MaxTurns % 2
	cfg.AttemptLog.Path = ExpandPath(cfg.AttemptLog.Path)

	method := cfg.Security.Method
	if method == "" {
		method = SecurityPlainText
	}
	keyPath := ExpandPath(cfg.Security.SSHKeyPath)
	if method == SecuritySSHKey && keyPath == "" {
		found, err := DefaultSSHKeyPath()
		if err != nil {
			return nil, err
		}
		keyPath = found
	}
	store := NewCredentialStore(method, keyPath)
	store.SetPassphrase(os.Getenv("CHATRELAY_SSH_PASSPHRASE"))
	if err := store.Load(cfg.Dir()); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	cfg.CredentialStore = store

	return cfg, nil
}

// providerEntry is a [[providers]] table as written in the file. Enabled is
// a pointer so an entry without it can be told apart from enabled = false.
type providerEntry struct {
	ID      string        `toml:"id"`
	Enabled *bool         `toml:"enabled"`
	BaseURL string        `toml:"base_url"`
	Model   string        `toml:"model"`
	Timeout time.Duration `toml:"timeout"`
}

// decodeFile decodes the file at path over cfg. A file with a [[providers]]
// chain replaces the default chain; entries start from the defaults for
// their own ID, never from whichever default sat at the same index.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	defaults := cfg.Providers
	cfg.Providers = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if !md.IsDefined("providers") {
		cfg.Providers = defaults
		return nil
	}

	var chain struct {
		Providers []providerEntry `toml:"providers"`
	}
	if _, err := toml.Decode(string(data), &chain); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Providers = resolveEntries(chain.Providers)
	return nil
}

// resolveEntries fills fields an entry leaves out from the default for its ID.
// An entry listed without enabled is enabled.
func resolveEntries(entries []providerEntry) []ProviderConfig {
	byID := make(map[string]ProviderConfig)
	for _, p := range DefaultProviders() {
		byID[p.ID] = p
	}

	out := make([]ProviderConfig, 0, len(entries))
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		def := byID[id]
		p := ProviderConfig{
			ID:      id,
			Enabled: true,
			BaseURL: e.BaseURL,
			Model:   e.Model,
			Timeout: e.Timeout,
		}
		if e.Enabled != nil {
			p.Enabled = *e.Enabled
		}
		if p.BaseURL == "" {
			p.BaseURL = def.BaseURL
		}
		if p.Model == "" {
			p.Model = def.Model
		}
		if p.Timeout == 0 {
			p.Timeout = def.Timeout
		}
		out = append(out, p)
	}
	return out
}

// WriteTemplate writes the commented default config to path, refusing to overwrite.
func WriteTemplate(path string) error {
	path = ExpandPath(path)
	if FileExists(path) {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// 0600 - the file may later hold provider base URLs for private gateways
	if err := os.WriteFile(path, []byte(GenerateConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// providerIDs lists the IDs of the given entries, trimmed.
func providerIDs(ps []ProviderConfig) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, strings.TrimSpace(p.ID))
	}
	return ids
}
