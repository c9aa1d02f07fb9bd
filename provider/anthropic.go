package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatrelay/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements model.Provider using Anthropic's official API.
// It uses the official Anthropic Go SDK for direct Claude API access.
type AnthropicProvider struct {
	client      *anthropic.Client
	model       anthropic.Model
	timeout     time.Duration
	system      string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - cfg.BaseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - cfg.APIKey: Anthropic API key (required)
//   - cfg.Model: model to use (default: "claude-sonnet-4-5-20250929")
//
// Returns an error wrapping ErrMissingCredentials if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is required (ANTHROPIC_API_KEY)", ErrMissingCredentials)
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if cfg.Model != "" {
		anthropicModel = anthropic.Model(cfg.Model)
	}

	// Retries are the relay's job, not the SDK's.
	client := anthropic.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)

	cfg.Type = ProviderTypeAnthropic
	return &AnthropicProvider{
		client:      &client,
		model:       anthropicModel,
		timeout:     cfg.timeout(),
		system:      cfg.SystemInstruction,
		maxTokens:   int64(cfg.maxOutputTokens()),
		temperature: cfg.Temperature,
	}, nil
}

func (p *AnthropicProvider) Name() string    { return string(ProviderTypeAnthropic) }
func (p *AnthropicProvider) Model() string   { return string(p.model) }
func (p *AnthropicProvider) Available() bool { return true }

// Attempt implements model.Provider.
func (p *AnthropicProvider) Attempt(ctx context.Context, transcript []model.Turn, message string) model.Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := Normalize(AnthropicDialect, p.system, transcript, message)

	params := anthropic.MessageNewParams{
		Model:       p.model,
		Messages:    convertToAnthropicMessages(req.Messages),
		MaxTokens:   p.maxTokens, // Required by Anthropic API
		Temperature: anthropic.Float(p.temperature),
	}

	// Anthropic uses a separate system parameter, not in messages array
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return classifyAnthropicError(err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}

	return replyResult(reply.String())
}

func convertToAnthropicMessages(entries []Entry) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(entries))
	for _, entry := range entries {
		block := anthropic.NewTextBlock(entry.Content)
		if entry.Role == AnthropicDialect.AssistantRole {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(block))
	}
	return msgs
}

func classifyAnthropicError(err error) model.Result {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Error(), err)
	}
	return classifyTransport(err)
}
