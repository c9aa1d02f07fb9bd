package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatrelay/model"
	"chatrelay/provider/testutil"
)

// vendorServer serves status and body for every request and captures the
// last request body.
type vendorServer struct {
	*httptest.Server
	lastBody   map[string]any
	lastPath   string
	lastHeader http.Header
}

func newVendorServer(t *testing.T, status int, body string) *vendorServer {
	t.Helper()
	vs := &vendorServer{}
	vs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		vs.lastBody = map[string]any{}
		_ = json.Unmarshal(raw, &vs.lastBody)
		vs.lastPath = r.URL.Path
		vs.lastHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(vs.Close)
	return vs
}

func messagesOf(t *testing.T, body map[string]any, key string) []map[string]any {
	t.Helper()
	raw, ok := body[key].([]any)
	if !ok {
		t.Fatalf("request body has no %q array: %v", key, body)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(map[string]any))
	}
	return out
}

const openAIReply = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hello from OpenAI"}}]
}`

func TestOpenAIProviderSuccess(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK, openAIReply)
	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "k", SystemInstruction: "be brief"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), testutil.Exchange("hi", "hey"), "how are you")
	if !res.OK() || res.Text != "Hello from OpenAI" {
		t.Fatalf("Attempt = %v, want success", res)
	}

	if !strings.HasSuffix(srv.lastPath, "/chat/completions") {
		t.Errorf("path = %q", srv.lastPath)
	}
	msgs := messagesOf(t, srv.lastBody, "messages")
	if len(msgs) != 4 {
		t.Fatalf("sent %d messages, want 4", len(msgs))
	}
	if msgs[0]["role"] != "system" || msgs[0]["content"] != "be brief" {
		t.Errorf("first message = %v, want system instruction", msgs[0])
	}
	if msgs[2]["role"] != "assistant" {
		t.Errorf("history role = %v, want assistant", msgs[2]["role"])
	}
	if _, ok := srv.lastBody["max_completion_tokens"]; !ok {
		t.Error("request should carry max_completion_tokens")
	}
}

func TestOpenAIProviderRateLimited(t *testing.T) {
	srv := newVendorServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}}`)
	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeRateLimited {
		t.Errorf("Outcome = %v, want rate_limited", res.Outcome)
	}
}

func TestOpenAIProviderEmptyReply(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK, strings.Replace(openAIReply, "Hello from OpenAI", "", 1))
	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeFailure || res.Kind != model.FailureMalformed {
		t.Errorf("Attempt = %v, want malformed failure", res)
	}
}

func TestOpenAIProviderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	p, err := NewOpenAIProvider(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeFailure || res.Kind != model.FailureTransient {
		t.Errorf("Attempt = %v, want transient failure", res)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("attempt took %v, timeout not applied", elapsed)
	}
}

func TestOpenRouterProviderPriming(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK, openAIReply)
	p, err := NewOpenRouterProvider(Config{BaseURL: srv.URL, APIKey: "k", SystemInstruction: "be brief"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "first question")
	if !res.OK() {
		t.Fatalf("Attempt = %v", res)
	}
	if p.Name() != "openrouter" {
		t.Errorf("Name() = %q", p.Name())
	}

	msgs := messagesOf(t, srv.lastBody, "messages")
	if len(msgs) != 3 {
		t.Fatalf("sent %d messages, want 3 (priming pair + question)", len(msgs))
	}
	if msgs[0]["role"] != "user" || msgs[0]["content"] != "be brief" {
		t.Errorf("priming instruction = %v", msgs[0])
	}
	if msgs[1]["role"] != "assistant" || msgs[1]["content"] != PrimingAcknowledgement {
		t.Errorf("priming acknowledgement = %v", msgs[1])
	}
	if _, ok := srv.lastBody["max_tokens"]; !ok {
		t.Error("request should carry max_tokens")
	}
	if got := srv.lastHeader.Get("X-Title"); got != "chatrelay" {
		t.Errorf("X-Title = %q", got)
	}
}

const anthropicReply = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5-20250929",
	"content": [{"type": "text", "text": "Hello from Claude"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestAnthropicProviderSuccess(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK, anthropicReply)
	p, err := NewAnthropicProvider(Config{BaseURL: srv.URL, APIKey: "k", SystemInstruction: "be brief"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), testutil.Exchange("hi", "hey"), "next")
	if !res.OK() || res.Text != "Hello from Claude" {
		t.Fatalf("Attempt = %v", res)
	}
	if !strings.HasSuffix(srv.lastPath, "/v1/messages") {
		t.Errorf("path = %q", srv.lastPath)
	}

	system := messagesOf(t, srv.lastBody, "system")
	if len(system) != 1 || system[0]["text"] != "be brief" {
		t.Errorf("system = %v", system)
	}
	msgs := messagesOf(t, srv.lastBody, "messages")
	if len(msgs) != 3 || msgs[1]["role"] != "assistant" || msgs[2]["role"] != "user" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestAnthropicProviderOverloaded(t *testing.T) {
	srv := newVendorServer(t, 529, `{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`)
	p, err := NewAnthropicProvider(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeFailure || res.Kind != model.FailureTransient {
		t.Errorf("Attempt = %v, want transient failure", res)
	}
}

func TestGeminiProviderSuccess(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK,
		`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Hello from Gemini"}]}, "finishReason": "STOP"}]}`)
	p, err := NewGeminiProvider(Config{BaseURL: srv.URL, APIKey: "k", SystemInstruction: "be brief"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), testutil.Exchange("hi", "hey"), "next")
	if !res.OK() || res.Text != "Hello from Gemini" {
		t.Fatalf("Attempt = %v", res)
	}
	if !strings.HasSuffix(srv.lastPath, "gemini-2.5-flash:generateContent") {
		t.Errorf("path = %q", srv.lastPath)
	}

	contents := messagesOf(t, srv.lastBody, "contents")
	if len(contents) != 3 || contents[1]["role"] != "model" {
		t.Errorf("contents = %v", contents)
	}
	if _, ok := srv.lastBody["systemInstruction"]; !ok {
		t.Error("request should carry systemInstruction")
	}
}

func TestGeminiProviderQuota(t *testing.T) {
	srv := newVendorServer(t, http.StatusTooManyRequests,
		`{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`)
	p, err := NewGeminiProvider(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeRateLimited {
		t.Errorf("Outcome = %v, want rate_limited", res.Outcome)
	}
}

func TestOllamaProviderSuccess(t *testing.T) {
	srv := newVendorServer(t, http.StatusOK,
		`{"model": "llama3.1", "created_at": "2025-01-01T00:00:00Z", "message": {"role": "assistant", "content": "Hello from Ollama"}, "done": true}`)
	p, err := NewOllamaProvider(Config{BaseURL: srv.URL, Model: "llama3.1", SystemInstruction: "be brief"})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if !res.OK() || res.Text != "Hello from Ollama" {
		t.Fatalf("Attempt = %v", res)
	}
	if srv.lastPath != "/api/chat" {
		t.Errorf("path = %q", srv.lastPath)
	}
	msgs := messagesOf(t, srv.lastBody, "messages")
	if len(msgs) != 2 || msgs[0]["role"] != "system" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestOllamaProviderServerError(t *testing.T) {
	srv := newVendorServer(t, http.StatusInternalServerError, `{"error": "model crashed"}`)
	p, err := NewOllamaProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeFailure || res.Kind != model.FailureTransient {
		t.Errorf("Attempt = %v, want transient failure", res)
	}
}

func TestUnavailableProviderMakesNoCall(t *testing.T) {
	p := NewUnavailableProvider("openai", "", ErrMissingCredentials)

	if p.Available() {
		t.Error("Available() = true")
	}
	res := p.Attempt(context.Background(), nil, "hi")
	if res.Outcome != model.OutcomeUnavailable {
		t.Errorf("Outcome = %v, want unavailable", res.Outcome)
	}
}
