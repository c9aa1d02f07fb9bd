package provider

import (
	"context"

	"chatrelay/model"
)

// UnavailableProvider stands in for a chain entry that could not be built,
// usually because its credentials are missing. It keeps the entry visible
// in listings and makes Attempt a no-op that never touches the network.
type UnavailableProvider struct {
	name   string
	model  string
	reason error
}

// NewUnavailableProvider returns a placeholder for provider name that failed with reason.
func NewUnavailableProvider(name, modelName string, reason error) *UnavailableProvider {
	return &UnavailableProvider{name: name, model: modelName, reason: reason}
}

func (p *UnavailableProvider) Name() string    { return p.name }
func (p *UnavailableProvider) Model() string   { return p.model }
func (p *UnavailableProvider) Available() bool { return false }

// Reason reports why the provider could not be built.
func (p *UnavailableProvider) Reason() error { return p.reason }

// Attempt implements model.Provider.
func (p *UnavailableProvider) Attempt(context.Context, []model.Turn, string) model.Result {
	return model.Unavailable(p.reason)
}
