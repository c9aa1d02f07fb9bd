package testutil

import (
	"context"
	"errors"
	"sync"

	"chatrelay/model"
)

// Call records one Attempt made against a MockProvider.
type Call struct {
	Transcript []model.Turn
	Message    string
}

// MockProvider implements model.Provider for testing.
type MockProvider struct {
	// AttemptFunc produces the result. Defaults to a fixed success.
	AttemptFunc func(ctx context.Context, transcript []model.Turn, message string) model.Result

	name      string
	model     string
	available bool

	mu    sync.Mutex
	calls []Call
}

// NewMockProvider creates an available mock that always succeeds with reply.
func NewMockProvider(name, reply string) *MockProvider {
	m := &MockProvider{name: name, model: name + "-model", available: true}
	m.AttemptFunc = func(context.Context, []model.Turn, string) model.Result {
		return model.Success(reply)
	}
	return m
}

// NewRateLimitedProvider creates a mock that always reports quota exhaustion.
func NewRateLimitedProvider(name string) *MockProvider {
	m := NewMockProvider(name, "")
	m.AttemptFunc = func(context.Context, []model.Turn, string) model.Result {
		return model.RateLimited(errors.New("429 Too Many Requests"))
	}
	return m
}

// NewFailingProvider creates a mock that always fails with kind.
func NewFailingProvider(name string, kind model.FailureKind) *MockProvider {
	m := NewMockProvider(name, "")
	m.AttemptFunc = func(context.Context, []model.Turn, string) model.Result {
		return model.Failure(kind, errors.New(name+" failed"))
	}
	return m
}

// NewUnavailableMock creates a mock that reports itself as not configured.
func NewUnavailableMock(name string) *MockProvider {
	m := NewMockProvider(name, "")
	m.available = false
	m.AttemptFunc = func(context.Context, []model.Turn, string) model.Result {
		return model.Unavailable(errors.New(name + " not configured"))
	}
	return m
}

func (m *MockProvider) Name() string    { return m.name }
func (m *MockProvider) Model() string   { return m.model }
func (m *MockProvider) Available() bool { return m.available }

func (m *MockProvider) Attempt(ctx context.Context, transcript []model.Turn, message string) model.Result {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Transcript: model.CopyTurns(transcript), Message: message})
	m.mu.Unlock()
	return m.AttemptFunc(ctx, transcript, message)
}

// Calls returns a copy of the recorded attempts.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times Attempt was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
