package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"chatrelay/model"
)

// quotaSignals are vendor phrases that mean "out of quota" even when the
// status code is not 429.
var quotaSignals = []string{
	"resource_exhausted",
	"insufficient_quota",
	"rate_limit",
	"rate limit",
	"quota",
	"too many requests",
	"credit balance",
}

func hasQuotaSignal(detail string) bool {
	detail = strings.ToLower(detail)
	for _, signal := range quotaSignals {
		if strings.Contains(detail, signal) {
			return true
		}
	}
	return false
}

// classifyStatus maps an HTTP status plus vendor detail text to a Result.
func classifyStatus(status int, detail string, err error) model.Result {
	switch {
	case status == http.StatusTooManyRequests || hasQuotaSignal(detail):
		return model.RateLimited(err)
	case status == http.StatusRequestTimeout || status >= 500:
		return model.Failure(model.FailureTransient, err)
	case status >= 400:
		return model.Failure(model.FailureClient, err)
	default:
		return model.Failure(model.FailureTransient, err)
	}
}

// classifyTransport handles errors that carry no HTTP status: timeouts,
// connection failures, decode errors.
func classifyTransport(err error) model.Result {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return model.Failure(model.FailureTransient, err)
	case hasQuotaSignal(err.Error()):
		return model.RateLimited(err)
	case errors.As(err, &netErr):
		return model.Failure(model.FailureTransient, err)
	default:
		return model.Failure(model.FailureMalformed, err)
	}
}

// replyResult turns extracted reply text into Success, or a malformed Failure when empty.
func replyResult(text string) model.Result {
	if strings.TrimSpace(text) == "" {
		return model.Failure(model.FailureMalformed, ErrEmptyReply)
	}
	return model.Success(text)
}
