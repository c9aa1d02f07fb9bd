package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatrelay/config"
	"chatrelay/model"
	"chatrelay/provider"
	"chatrelay/provider/testutil"
	"chatrelay/relay"
	"chatrelay/storage"
)

func newTestChat(providers ...model.Provider) (chatModel, *storage.SessionStore) {
	store := storage.NewSessionStore()
	svc := relay.NewService(store, relay.NewOrchestrator(providers), false)
	return newChatModel(context.Background(), svc, "tui-session"), store
}

func TestChatModelRoundTrip(t *testing.T) {
	m, store := newTestChat(testutil.NewMockProvider("openai", "**Hello** there"))

	m, cmd := m.submit("  hi  ")
	if cmd == nil {
		t.Fatal("submit should return a command")
	}
	if !m.waiting || len(m.lines) != 1 || !m.lines[0].user || m.lines[0].content != "hi" {
		t.Fatalf("after submit: waiting=%v lines=%+v", m.waiting, m.lines)
	}

	msg := m.send("hi")()
	updated, _ := m.Update(msg)
	m = updated.(chatModel)

	if m.waiting {
		t.Error("still waiting after reply")
	}
	if len(m.lines) != 2 || m.lines[1].provider != "openai" {
		t.Fatalf("lines = %+v", m.lines)
	}
	if store.Len("tui-session") != 2 {
		t.Errorf("stored turns = %d, want 2", store.Len("tui-session"))
	}
}

func TestChatModelIgnoresBlankAndBusy(t *testing.T) {
	m, _ := newTestChat(testutil.NewMockProvider("openai", "ok"))

	if _, cmd := m.submit("   "); cmd != nil {
		t.Error("blank input should not send")
	}

	m.waiting = true
	if _, cmd := m.submit("hello"); cmd != nil {
		t.Error("input while waiting should not send")
	}
}

func TestChatModelReset(t *testing.T) {
	m, store := newTestChat(testutil.NewMockProvider("openai", "ok"))
	store.Append("tui-session", testutil.Exchange("q", "a")...)
	m.lines = []chatLine{{user: true, content: "q"}, {content: "a", provider: "openai"}}

	m, cmd := m.submit("/reset")
	if cmd != nil {
		t.Error("reset should not send")
	}
	if len(m.lines) != 0 || store.Exists("tui-session") {
		t.Errorf("reset left lines=%d stored=%v", len(m.lines), store.Exists("tui-session"))
	}
}

func TestChatModelError(t *testing.T) {
	m, _ := newTestChat()
	m.waiting = true

	updated, _ := m.Update(replyMsg{err: errors.New("boom")})
	m = updated.(chatModel)
	if m.waiting || !strings.Contains(m.status, "boom") {
		t.Errorf("waiting=%v status=%q", m.waiting, m.status)
	}
}

func TestRenderProviderList(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers = []config.ProviderConfig{
		{ID: "gemini", Enabled: true, Timeout: 30 * time.Second},
		{ID: "openai", Enabled: true, Model: "gpt-4o-mini"},
		{ID: "ollama", Enabled: false},
	}
	chain := []model.Provider{
		provider.NewUnavailableProvider("gemini", "", provider.ErrMissingCredentials),
		testutil.NewMockProvider("openai", "ok"),
	}

	out := renderProviderList(cfg, chain)

	for _, want := range []string{"Google Gemini", "OpenAI", "Ollama", "unavailable", "GEMINI_API_KEY", "ready", "disabled", "30s", "20s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAttempts(t *testing.T) {
	var buf bytes.Buffer
	writeAttempts(&buf, nil)
	if !strings.Contains(buf.String(), "No attempts") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	writeAttempts(&buf, []storage.Attempt{
		{CreatedAt: time.Now(), Provider: "gemini", Outcome: "failure", Kind: "client", Latency: 40 * time.Millisecond, SessionID: "s1", Error: "400 bad request"},
		{CreatedAt: time.Now(), Provider: "openai", Outcome: "success", Latency: time.Second, SessionID: "s1"},
	})
	out := buf.String()
	for _, want := range []string{"gemini", "failure/client", "400 bad request", "openai", "session=s1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutcomeSummary(t *testing.T) {
	var buf bytes.Buffer
	writeOutcomeSummary(&buf, map[string]map[string]int{
		"openai": {"success": 3, "rate_limited": 1},
		"gemini": {"failure": 2},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "gemini") {
		t.Fatalf("summary = %q", buf.String())
	}
	if !strings.Contains(lines[1], "rate_limited=1 success=3") {
		t.Errorf("openai line = %q", lines[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("Some **bold** text and https://example.com", 60)
	if !strings.Contains(out, "bold") || !strings.Contains(out, "https://example.com") {
		t.Errorf("rendered = %q", out)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := loadEnvFile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
	if err := loadEnvFile(t.TempDir() + "/missing.env"); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}
