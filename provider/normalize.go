package provider

import (
	"strings"

	"chatrelay/model"
)

// PrimingAcknowledgement is the canned model reply that follows the
// instruction turn in a priming exchange.
const PrimingAcknowledgement = "Understood. I will follow these instructions for the rest of our conversation."

// Dialect describes how a vendor wants a conversation laid out.
type Dialect struct {
	Name string

	// AssistantRole is the vendor's label for model turns ("assistant", "model").
	AssistantRole string

	// NativeSystem is true when the vendor takes the system instruction in a
	// dedicated field or role. When false, a new conversation is opened with
	// a priming exchange instead.
	NativeSystem bool
}

var (
	GeminiDialect    = Dialect{Name: "gemini", AssistantRole: "model", NativeSystem: true}
	AnthropicDialect = Dialect{Name: "anthropic", AssistantRole: "assistant", NativeSystem: true}
	OpenAIDialect    = Dialect{Name: "openai", AssistantRole: "assistant", NativeSystem: true}
	OllamaDialect    = Dialect{Name: "ollama", AssistantRole: "assistant", NativeSystem: true}

	// Models behind OpenRouter disagree on whether a system role is accepted
	// (some reject it outright), so the instruction travels as a priming exchange.
	OpenRouterDialect = Dialect{Name: "openrouter", AssistantRole: "assistant", NativeSystem: false}
)

// Entry is one vendor-labelled message.
type Entry struct {
	Role    string
	Content string
}

// Request is the vendor-agnostic payload adapters translate into SDK types.
type Request struct {
	// System is set only for dialects with NativeSystem.
	System   string
	Messages []Entry
}

func (d Dialect) role(r model.Role) string {
	if r == model.RoleAssistant {
		return d.AssistantRole
	}
	return string(model.RoleUser)
}

// Normalize lays out transcript and the new user message for dialect d.
//
// Stored assistant turns are relabelled to d.AssistantRole and message is
// always the last entry. For dialects without NativeSystem, an empty
// transcript is prefixed with {user: system} and {assistant: acknowledgement};
// once a conversation exists the instruction is not repeated. The input
// slice is never modified.
func Normalize(d Dialect, system string, transcript []model.Turn, message string) Request {
	system = strings.TrimSpace(system)
	req := Request{
		Messages: make([]Entry, 0, len(transcript)+3),
	}

	switch {
	case d.NativeSystem:
		req.System = system
	case system != "" && len(transcript) == 0:
		req.Messages = append(req.Messages,
			Entry{Role: string(model.RoleUser), Content: system},
			Entry{Role: d.AssistantRole, Content: PrimingAcknowledgement},
		)
	}

	for _, turn := range transcript {
		req.Messages = append(req.Messages, Entry{
			Role:    d.role(turn.Role),
			Content: turn.Content,
		})
	}

	req.Messages = append(req.Messages, Entry{
		Role:    string(model.RoleUser),
		Content: message,
	})

	return req
}
