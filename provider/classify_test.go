package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"chatrelay/model"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		detail  string
		outcome model.Outcome
		kind    model.FailureKind
	}{
		{"429", 429, "", model.OutcomeRateLimited, model.FailureNone},
		{"quota in 403 body", 403, "RESOURCE_EXHAUSTED quota exceeded", model.OutcomeRateLimited, model.FailureNone},
		{"insufficient quota", 400, "insufficient_quota", model.OutcomeRateLimited, model.FailureNone},
		{"server error", 500, "internal", model.OutcomeFailure, model.FailureTransient},
		{"overloaded", 529, "overloaded_error", model.OutcomeFailure, model.FailureTransient},
		{"request timeout", 408, "", model.OutcomeFailure, model.FailureTransient},
		{"bad request", 400, "invalid model", model.OutcomeFailure, model.FailureClient},
		{"unauthorized", 401, "invalid api key", model.OutcomeFailure, model.FailureClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyStatus(tt.status, tt.detail, errors.New(tt.detail))
			if res.Outcome != tt.outcome {
				t.Errorf("Outcome = %v, want %v", res.Outcome, tt.outcome)
			}
			if res.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", res.Kind, tt.kind)
			}
			if res.Err == nil {
				t.Error("Err should be preserved")
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome model.Outcome
		kind    model.FailureKind
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), model.OutcomeFailure, model.FailureTransient},
		{"canceled", context.Canceled, model.OutcomeFailure, model.FailureTransient},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, model.OutcomeFailure, model.FailureTransient},
		{"quota text", errors.New("rate limit reached"), model.OutcomeRateLimited, model.FailureNone},
		{"decode", errors.New("invalid character '<' looking for beginning of value"), model.OutcomeFailure, model.FailureMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyTransport(tt.err)
			if res.Outcome != tt.outcome || res.Kind != tt.kind {
				t.Errorf("got %v/%q, want %v/%q", res.Outcome, res.Kind, tt.outcome, tt.kind)
			}
		})
	}
}

func TestReplyResult(t *testing.T) {
	if res := replyResult("hi"); !res.OK() || res.Text != "hi" {
		t.Errorf("replyResult(hi) = %v", res)
	}

	res := replyResult(" \n\t")
	if res.Outcome != model.OutcomeFailure || res.Kind != model.FailureMalformed {
		t.Errorf("blank reply = %v, want malformed failure", res)
	}
	if !errors.Is(res.Err, ErrEmptyReply) {
		t.Errorf("Err = %v, want ErrEmptyReply", res.Err)
	}
}
