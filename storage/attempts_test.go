package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestLog(t *testing.T) *AttemptLog {
	t.Helper()
	log, err := OpenAttemptLog(filepath.Join(t.TempDir(), "logs", "attempts.db"))
	if err != nil {
		t.Fatalf("OpenAttemptLog: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestAttemptLogRecordAndRecent(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	attempts := []Attempt{
		{RequestID: "r1", SessionID: "s1", Provider: "gemini", Outcome: "rate_limited", Latency: 120 * time.Millisecond, Error: "429"},
		{RequestID: "r1", SessionID: "s1", Provider: "anthropic", Model: "claude", Outcome: "success", Latency: 900 * time.Millisecond},
		{RequestID: "r2", SessionID: "s2", Provider: "gemini", Outcome: "failure", Kind: "client", Latency: 40 * time.Millisecond, Error: "400"},
	}
	for _, a := range attempts {
		if err := log.Record(ctx, a); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d attempts, want 2", len(recent))
	}

	newest := recent[0]
	if newest.RequestID != "r2" || newest.Kind != "client" || newest.Error != "400" {
		t.Errorf("newest = %+v", newest)
	}
	if newest.Latency != 40*time.Millisecond {
		t.Errorf("Latency = %v, want 40ms", newest.Latency)
	}
	if newest.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
	if recent[1].Provider != "anthropic" || recent[1].Model != "claude" {
		t.Errorf("second = %+v", recent[1])
	}
}

func TestAttemptLogOutcomeCounts(t *testing.T) {
	log := openTestLog(t)
	ctx := context.Background()

	for _, outcome := range []string{"success", "success", "rate_limited"} {
		if err := log.Record(ctx, Attempt{RequestID: "r", SessionID: "s", Provider: "openai", Outcome: outcome}); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := log.OutcomeCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["openai"]["success"] != 2 || counts["openai"]["rate_limited"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestAttemptLogReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.db")

	first, err := OpenAttemptLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Record(context.Background(), Attempt{RequestID: "r", SessionID: "s", Provider: "ollama", Outcome: "success"}); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := OpenAttemptLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	recent, err := second.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("got %d attempts after reopen, want 1", len(recent))
	}
}
