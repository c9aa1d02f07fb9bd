package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatrelay/model"
	"chatrelay/ollama"

	"github.com/ollama/ollama/api"
)

// OllamaProvider wraps the ollama.Client to implement model.Provider.
//
// Ollama needs no API key; its "credential" is the server address, taken
// from the provider's base_url or OLLAMA_HOST.
type OllamaProvider struct {
	client      *ollama.Client
	timeout     time.Duration
	system      string
	maxTokens   int
	temperature float64
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - cfg.BaseURL: the Ollama server URL, e.g. "http://localhost:11434" (required)
//   - cfg.Model: the model name (default: "llama3.1:latest")
//
// Returns an error wrapping ErrMissingCredentials if no server address is
// configured, or an error if the URL cannot be parsed.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: Ollama host is required (OLLAMA_HOST or base_url)", ErrMissingCredentials)
	}

	client, err := ollama.NewClient(cfg.BaseURL, cfg.Model, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	cfg.Type = ProviderTypeOllama
	return &OllamaProvider{
		client:      client,
		timeout:     cfg.timeout(),
		system:      cfg.SystemInstruction,
		maxTokens:   cfg.maxOutputTokens(),
		temperature: cfg.Temperature,
	}, nil
}

func (p *OllamaProvider) Name() string    { return string(ProviderTypeOllama) }
func (p *OllamaProvider) Model() string   { return p.client.GetModel() }
func (p *OllamaProvider) Available() bool { return true }

// Attempt implements model.Provider.
func (p *OllamaProvider) Attempt(ctx context.Context, transcript []model.Turn, message string) model.Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := Normalize(OllamaDialect, p.system, transcript, message)

	reply, err := p.client.Chat(ctx, convertToOllamaMessages(req), ollama.Options{
		Temperature: p.temperature,
		NumPredict:  p.maxTokens,
	})
	if err != nil {
		return classifyOllamaError(err)
	}

	return replyResult(reply)
}

// convertToOllamaMessages converts a normalized request to Ollama format.
// The system instruction becomes a leading "system" message.
func convertToOllamaMessages(req Request) []api.Message {
	msgs := make([]api.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}
	for _, entry := range req.Messages {
		msgs = append(msgs, api.Message{Role: entry.Role, Content: entry.Content})
	}
	return msgs
}

func classifyOllamaError(err error) model.Result {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode, statusErr.ErrorMessage, err)
	}
	return classifyTransport(err)
}
