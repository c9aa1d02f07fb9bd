package relay

import "errors"

var (
	// ErrEmptyInput is returned by Service.Chat for an empty or
	// whitespace-only message. Nothing is stored.
	ErrEmptyInput = errors.New("message must not be empty")

	// ErrConfigurationMissing is returned in strict mode when no provider
	// in the chain has credentials.
	ErrConfigurationMissing = errors.New("no provider is configured")
)
