package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatrelay/model"

	"google.golang.org/genai"
)

// GeminiProvider implements model.Provider using Google's Gen AI SDK.
// The system instruction travels in GenerateContentConfig.SystemInstruction
// and model turns use the "model" role.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	system      string
	maxTokens   int32
	temperature float32
}

// NewGeminiProvider creates a new Gemini provider instance.
//
// Parameters:
//   - cfg.BaseURL: API base URL (default: the public Gemini API)
//   - cfg.APIKey: Gemini API key (required)
//   - cfg.Model: model to use (default: "gemini-2.5-flash")
//
// Returns an error wrapping ErrMissingCredentials if the API key is missing.
func NewGeminiProvider(cfg Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required (GEMINI_API_KEY)", ErrMissingCredentials)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		clientCfg.HTTPOptions.BaseURL = baseURL
	}

	// NewClient does no I/O for the Gemini API backend.
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	cfg.Type = ProviderTypeGemini
	return &GeminiProvider{
		client:      client,
		model:       cfg.Model,
		timeout:     cfg.timeout(),
		system:      cfg.SystemInstruction,
		maxTokens:   int32(cfg.maxOutputTokens()),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (p *GeminiProvider) Name() string    { return string(ProviderTypeGemini) }
func (p *GeminiProvider) Model() string   { return p.model }
func (p *GeminiProvider) Available() bool { return true }

// Attempt implements model.Provider.
func (p *GeminiProvider) Attempt(ctx context.Context, transcript []model.Turn, message string) model.Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := Normalize(GeminiDialect, p.system, transcript, message)

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, entry := range req.Messages {
		contents = append(contents, genai.NewContentFromText(entry.Content, genai.Role(entry.Role)))
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: p.maxTokens,
		Temperature:     genai.Ptr(p.temperature),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
	if err != nil {
		return classifyGeminiError(err)
	}

	return replyResult(resp.Text())
}

func classifyGeminiError(err error) model.Result {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Status+" "+apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Status+" "+apiErrPtr.Message, err)
	}
	return classifyTransport(err)
}
