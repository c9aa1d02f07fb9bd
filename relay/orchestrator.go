// Package relay implements the fallback chain and the chat service that
// sits between the HTTP front end and the session store.
package relay

import (
	"context"
	"time"

	"chatrelay/config"
	"chatrelay/model"
	"chatrelay/storage"
)

// NoProvider is reported as the answering provider when the chain is exhausted.
const NoProvider = "none"

// ExhaustedReply is returned to the user when every provider failed.
const ExhaustedReply = "I'm sorry, I'm having trouble reaching my AI backends right now. Please try again in a moment."

// AttemptRecorder receives one record per provider attempt.
// storage.AttemptLog implements it.
type AttemptRecorder interface {
	Record(ctx context.Context, a storage.Attempt) error
}

// AttemptInfo describes one provider attempt within a Run.
type AttemptInfo struct {
	Provider string
	Model    string
	Outcome  model.Outcome
	Kind     model.FailureKind
	Err      error
	Latency  time.Duration
}

// Reply is the terminal state of a Run: Succeeded or Exhausted.
type Reply struct {
	Text      string
	Provider  string
	Exhausted bool
	Attempts  []AttemptInfo
}

// Orchestrator tries providers in a fixed order until one answers.
//
// Every Run starts at the top of the chain. There is no health tracking,
// reordering or cooldown, and providers are never called in parallel.
type Orchestrator struct {
	providers []model.Provider
	maxTurns  int
	recorder  AttemptRecorder
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTurns limits how many stored turns are sent to providers.
// Zero or less sends the whole transcript.
func WithMaxTurns(n int) Option {
	return func(o *Orchestrator) { o.maxTurns = n }
}

// WithRecorder records every attempt to r.
func WithRecorder(r AttemptRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator builds a chain over providers, in priority order.
func NewOrchestrator(providers []model.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers: append([]model.Provider(nil), providers...),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Providers returns the chain in priority order.
func (o *Orchestrator) Providers() []model.Provider {
	return append([]model.Provider(nil), o.providers...)
}

// Available returns the names of providers that have credentials, in order.
func (o *Orchestrator) Available() []string {
	names := []string{}
	for _, p := range o.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Run walks the chain for one message. transcript is read, never modified.
//
// The first Success ends the walk. RateLimited, Failure and Unavailable
// advance to the next provider. Running off the end, or a cancelled ctx,
// yields an Exhausted reply carrying ExhaustedReply and NoProvider.
func (o *Orchestrator) Run(ctx context.Context, transcript []model.Turn, message string) Reply {
	window := windowTurns(transcript, o.maxTurns)
	reply := Reply{}

	for _, p := range o.providers {
		if err := ctx.Err(); err != nil {
			config.Logger.Info("[Relay] request cancelled, stopping chain",
				"request_id", RequestID(ctx), "error", err)
			break
		}

		start := time.Now()
		res := p.Attempt(ctx, window, message)
		info := AttemptInfo{
			Provider: p.Name(),
			Model:    p.Model(),
			Outcome:  res.Outcome,
			Kind:     res.Kind,
			Err:      res.Err,
			Latency:  time.Since(start),
		}
		reply.Attempts = append(reply.Attempts, info)

		o.logAttempt(ctx, info)
		o.record(ctx, info)

		if res.OK() {
			reply.Text = res.Text
			reply.Provider = p.Name()
			return reply
		}
	}

	config.Logger.Warn("[Relay] all providers exhausted",
		"request_id", RequestID(ctx), "attempts", len(reply.Attempts))

	reply.Text = ExhaustedReply
	reply.Provider = NoProvider
	reply.Exhausted = true
	return reply
}

func (o *Orchestrator) logAttempt(ctx context.Context, info AttemptInfo) {
	attrs := []any{
		"request_id", RequestID(ctx),
		"provider", info.Provider,
		"model", info.Model,
		"latency", info.Latency.Round(time.Millisecond),
	}
	if info.Err != nil {
		attrs = append(attrs, "error", config.Preview(info.Err.Error(), 200))
	}

	switch info.Outcome {
	case model.OutcomeSuccess:
		config.Logger.Info("[Relay] provider answered", attrs...)
	case model.OutcomeRateLimited:
		config.Logger.Warn("[Relay] provider rate limited", attrs...)
	case model.OutcomeUnavailable:
		config.Logger.Debug("[Relay] provider not configured, skipping", attrs...)
	case model.OutcomeFailure:
		attrs = append(attrs, "kind", string(info.Kind))
		if info.Kind == model.FailureClient {
			config.Logger.Error("[Relay] provider rejected request", attrs...)
			return
		}
		config.Logger.Warn("[Relay] provider failed", attrs...)
	}
}

func (o *Orchestrator) record(ctx context.Context, info AttemptInfo) {
	if o.recorder == nil {
		return
	}

	a := storage.Attempt{
		RequestID: RequestID(ctx),
		SessionID: sessionID(ctx),
		Provider:  info.Provider,
		Model:     info.Model,
		Outcome:   info.Outcome.String(),
		Kind:      string(info.Kind),
		Latency:   info.Latency,
	}
	if info.Err != nil {
		a.Error = info.Err.Error()
	}

	// Record even when the client has gone away.
	if err := o.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		config.Logger.Warn("[Relay] failed to record attempt", "error", err)
	}
}

// windowTurns returns the last maxTurns turns of transcript, moved forward
// so the window starts on a user turn. An odd maxTurns is rounded up to a
// whole exchange. maxTurns <= 0 returns transcript.
func windowTurns(transcript []model.Turn, maxTurns int) []model.Turn {
	if maxTurns <= 0 {
		return transcript
	}
	maxTurns += maxTurns % 2
	if len(transcript) <= maxTurns {
		return transcript
	}

	start := len(transcript) - maxTurns
	for start < len(transcript) && transcript[start].Role != model.RoleUser {
		start++
	}
	return transcript[start:]
}
