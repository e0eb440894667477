package errors

// Remote-source helpers for mapping HTTP responses and transport errors to
// project ErrorCode, plus the retry/recovery predicates the query client uses

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
)

// FromHTTPStatus maps a remote response status to an ErrorCode.
// 2xx maps to Unknown since callers should not be asking about successes
func FromHTTPStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorCodeSessionExpired
	case status == http.StatusForbidden:
		return ErrorCodeAuth
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case status >= 500:
		return ErrorCodeUnavailable
	case status >= 400:
		return ErrorCodeInvalidArgument
	default:
		return ErrorCodeUnknown
	}
}

// IsTransient reports whether the error class is expected to clear on its own
// (network hiccups, server errors, rate limiting)
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	// raw transport errors that never got classified
	var nerr net.Error
	if stderrs.As(Root(err), &nerr) {
		return true
	}
	return false
}

// IsSessionExpired reports whether the error means the remote session is stale
func IsSessionExpired(err error) bool { return IsCode(err, ErrorCodeSessionExpired) }

// IsAuth reports whether the error is an authentication failure (fatal for the run)
func IsAuth(err error) bool { return IsCode(err, ErrorCodeAuth) }

// IsCanceled reports whether the error is a context cancellation or deadline.
// Canceled calls are neither retried nor recovered
func IsCanceled(err error) bool {
	return stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded)
}
