package config

const (
	DefaultListen          = ":5000"
	DefaultMaxOutputTokens = 2048
	DefaultTemperature     = 0.7

	DefaultSystemInstruction = "You are a helpful, friendly, and knowledgeable AI assistant. " +
		"Be concise but thorough. Format responses with markdown when helpful."
)

func DefaultConfig() *Config {
	return &Config{
		Listen:            DefaultListen,
		SystemInstruction: DefaultSystemInstruction,
		MaxOutputTokens:   DefaultMaxOutputTokens,
		Temperature:       DefaultTemperature,
		Security: SecurityConfig{
			Method: SecurityPlainText,
		},
		Providers: DefaultProviders(),
	}
}

func GenerateConfigTemplate() string {
	return `# chatrelay configuration
# Location: ~/.config/chatrelay/config.toml
# This file uses TOML format: https://toml.io

# Address the HTTP server listens on (PORT env var overrides the port)
listen = ":5000"

# Instruction sent to every provider. Providers without a native system
# field receive it as a priming exchange at the start of a new session.
system_instruction = "You are a helpful, friendly, and knowledgeable AI assistant. Be concise but thorough. Format responses with markdown when helpful."

# When true, /chat answers 500 if no provider has credentials.
# When false, it answers with the degradation message instead.
strict = false

max_output_tokens = 2048
temperature = 0.7

[history]
# Number of stored turns sent to providers (0 = whole transcript).
# Odd values are rounded up to whole user/assistant exchanges.
max_turns = 0

[attempt_log]
# sqlite file recording every provider attempt (empty = disabled).
# Example: "~/.local/share/chatrelay/attempts.db"
path = ""

[security]
# How credentials.* next to this file are stored: "plaintext" or "ssh_key".
# Environment variables (GEMINI_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY,
# OPENROUTER_API_KEY) always take precedence.
method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"

# Fallback chain, tried top to bottom on every request. Listing [[providers]]
# replaces the default chain. An entry without enabled is enabled, and an
# entry without model or timeout uses that provider's defaults.
[[providers]]
id = "gemini"
enabled = true
model = "gemini-2.5-flash"
timeout = "30s"

[[providers]]
id = "anthropic"
enabled = true
timeout = "30s"

[[providers]]
id = "openai"
enabled = true
timeout = "20s"

[[providers]]
id = "openrouter"
enabled = true
timeout = "25s"

# Ollama needs a host instead of a key (base_url or OLLAMA_HOST).
[[providers]]
id = "ollama"
enabled = false
timeout = "15s"
`
}
