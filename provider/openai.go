package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatrelay/model"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements model.Provider using the official OpenAI Go SDK.
// The same type serves OpenRouter, which is OpenAI-compatible; see
// NewOpenRouterProvider.
type OpenAIProvider struct {
	name        string
	client      openai.Client
	model       string
	dialect     Dialect
	timeout     time.Duration
	system      string
	maxTokens   int64
	temperature float64

	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	legacyMaxTokens bool
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - cfg.BaseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - cfg.APIKey: OpenAI API key (required)
//   - cfg.Model: model to use (default: "gpt-4o-mini")
//
// Returns an error wrapping ErrMissingCredentials if the API key is missing.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required (OPENAI_API_KEY)", ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini" // Default to affordable model
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)

	cfg.Type = ProviderTypeOpenAI
	return &OpenAIProvider{
		name:        string(ProviderTypeOpenAI),
		client:      client,
		model:       cfg.Model,
		dialect:     OpenAIDialect,
		timeout:     cfg.timeout(),
		system:      cfg.SystemInstruction,
		maxTokens:   int64(cfg.maxOutputTokens()),
		temperature: cfg.Temperature,
	}, nil
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) Model() string   { return p.model }
func (p *OpenAIProvider) Available() bool { return true }

// Attempt implements model.Provider.
func (p *OpenAIProvider) Attempt(ctx context.Context, transcript []model.Turn, message string) model.Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := Normalize(p.dialect, p.system, transcript, message)

	params := openai.ChatCompletionNewParams{
		Messages:    ConvertToOpenAIMessages(req),
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(p.temperature),
	}
	if p.legacyMaxTokens {
		params.MaxTokens = openai.Int(p.maxTokens)
	} else {
		params.MaxCompletionTokens = openai.Int(p.maxTokens)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return classifyOpenAIError(err)
	}
	if len(completion.Choices) == 0 {
		return model.Failure(model.FailureMalformed, fmt.Errorf("%s: response has no choices", p.name))
	}

	return replyResult(completion.Choices[0].Message.Content)
}

// ConvertToOpenAIMessages converts a normalized request to OpenAI format.
// A native system instruction becomes a leading system message.
func ConvertToOpenAIMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)

	if req.System != "" {
		result = append(result, openai.SystemMessage(req.System))
	}

	for _, entry := range req.Messages {
		switch entry.Role {
		case "assistant":
			result = append(result, openai.AssistantMessage(entry.Content))
		default:
			result = append(result, openai.UserMessage(entry.Content))
		}
	}

	return result
}

func classifyOpenAIError(err error) model.Result {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Code+" "+apiErr.Type+" "+apiErr.Message, err)
	}
	return classifyTransport(err)
}
