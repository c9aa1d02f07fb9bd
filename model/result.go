package model

import "fmt"

// Outcome tags the variant held by a Result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeRateLimited
	OutcomeFailure
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailure:
		return "failure"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// FailureKind separates failures that point at our own request from
// failures that point at the vendor. The fallback chain treats them the
// same; logging and the attempt log do not.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransient FailureKind = "transient" // timeout, network, 5xx
	FailureClient    FailureKind = "client"    // 4xx other than 429: bad request, auth
	FailureMalformed FailureKind = "malformed" // unparseable or empty reply
)

// Result is the value a Provider returns for one attempt.
//
// Exactly one variant is meaningful, selected by Outcome:
//   - OutcomeSuccess: Text holds the reply
//   - OutcomeRateLimited: Err holds the vendor signal
//   - OutcomeFailure: Err and Kind describe what went wrong
//   - OutcomeUnavailable: Err explains why the provider is not configured
type Result struct {
	Outcome Outcome
	Text    string
	Kind    FailureKind
	Err     error
}

// Success wraps a reply.
func Success(text string) Result {
	return Result{Outcome: OutcomeSuccess, Text: text}
}

// RateLimited reports a 429 or quota exhaustion.
func RateLimited(err error) Result {
	return Result{Outcome: OutcomeRateLimited, Err: err}
}

// Failure reports any other error.
func Failure(kind FailureKind, err error) Result {
	return Result{Outcome: OutcomeFailure, Kind: kind, Err: err}
}

// Unavailable reports a provider that cannot be called at all (missing credentials).
func Unavailable(err error) Result {
	return Result{Outcome: OutcomeUnavailable, Err: err}
}

// OK reports whether the result carries a reply.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func (r Result) String() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return fmt.Sprintf("failure(%s): %v", r.Kind, r.Err)
	default:
		return fmt.Sprintf("%s: %v", r.Outcome, r.Err)
	}
}
