package model

import "context"

// Provider abstracts one LLM vendor behind a single attempt call.
//
// This interface is defined in the model package (not provider package) so
// the relay can depend on it without importing every vendor SDK.
type Provider interface {
	// Name returns the provider ID used in config, logs and replies ("gemini", "openai", ...).
	Name() string

	// Model returns the model name requests are sent to.
	Model() string

	// Available reports whether the provider has what it needs (credentials, host)
	// to make a network call. Unavailable providers answer Attempt without I/O.
	Available() bool

	// Attempt sends the transcript plus the new user message and classifies the outcome.
	// It must not modify transcript and must not retry.
	Attempt(ctx context.Context, transcript []Turn, message string) Result
}
