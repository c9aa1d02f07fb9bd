package provider

import (
	"testing"

	"chatrelay/model"
	"chatrelay/provider/testutil"
)

func TestNormalizeNativeSystem(t *testing.T) {
	transcript := testutil.Exchange("hi", "hello there")

	req := Normalize(GeminiDialect, "  be brief  ", transcript, "next")

	if req.System != "be brief" {
		t.Errorf("System = %q, want %q", req.System, "be brief")
	}
	want := []Entry{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "hello there"},
		{Role: "user", Content: "next"},
	}
	assertEntries(t, req.Messages, want)
}

func TestNormalizePrimingOnEmptyTranscript(t *testing.T) {
	req := Normalize(OpenRouterDialect, "be brief", nil, "first")

	if req.System != "" {
		t.Errorf("System = %q, want empty for priming dialect", req.System)
	}
	want := []Entry{
		{Role: "user", Content: "be brief"},
		{Role: "assistant", Content: PrimingAcknowledgement},
		{Role: "user", Content: "first"},
	}
	assertEntries(t, req.Messages, want)
}

func TestNormalizePrimingNotRepeated(t *testing.T) {
	transcript := testutil.Exchange("first", "answer")

	req := Normalize(OpenRouterDialect, "be brief", transcript, "second")

	want := []Entry{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "second"},
	}
	assertEntries(t, req.Messages, want)
}

func TestNormalizeNoSystemNoPriming(t *testing.T) {
	req := Normalize(OpenRouterDialect, "   ", nil, "first")

	want := []Entry{{Role: "user", Content: "first"}}
	assertEntries(t, req.Messages, want)
}

func TestNormalizeDoesNotModifyTranscript(t *testing.T) {
	transcript := testutil.TestTranscript()
	before := model.CopyTurns(transcript)

	Normalize(GeminiDialect, "sys", transcript, "more")

	for i := range transcript {
		if transcript[i] != before[i] {
			t.Fatalf("transcript[%d] changed: %+v -> %+v", i, before[i], transcript[i])
		}
	}
}

func TestNormalizeMessageAlwaysLast(t *testing.T) {
	dialects := []Dialect{GeminiDialect, AnthropicDialect, OpenAIDialect, OpenRouterDialect, OllamaDialect}
	for _, d := range dialects {
		t.Run(d.Name, func(t *testing.T) {
			req := Normalize(d, "sys", testutil.TestTranscript(), "the question")
			last := req.Messages[len(req.Messages)-1]
			if last.Role != "user" || last.Content != "the question" {
				t.Errorf("last entry = %+v, want user message", last)
			}
		})
	}
}

func assertEntries(t *testing.T, got, want []Entry) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
