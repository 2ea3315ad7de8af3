package errors

// Helpers for mapping model backend failures (HTTP status, transport, deadline) to ErrorCode

import (
	"context"
	stderrs "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// UpstreamCode maps a backend's HTTP status to an ErrorCode.
// !ok means the status was a success and no error applies
func UpstreamCode(status int) (ErrorCode, bool) {
	switch {
	case status >= 200 && status < 300:
		return ErrorCodeUnknown, false
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests, true
	case status == http.StatusUnauthorized:
		return ErrorCodeUnauthorized, true
	case status == http.StatusForbidden:
		return ErrorCodeForbidden, true
	case status == http.StatusNotFound:
		// usually a model that was never pulled
		return ErrorCodeNotFound, true
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrorCodeTimeout, true
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable:
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeUpstream, true
	}
}

// FromStatus builds an error for a non-2xx backend answer. Returns nil on 2xx
func FromStatus(status int, msg string) error {
	code, ok := UpstreamCode(status)
	if !ok {
		return nil
	}
	return Newf(code, "%s: status %d", msg, status)
}

// FromTransport wraps a failed round trip. Deadlines map to Timeout, everything
// else that never reached the backend maps to Unavailable. If err is nil, returns nil
func FromTransport(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsTimeout(err) {
		return Wrap(err, ErrorCodeTimeout, msg)
	}
	return Wrap(err, ErrorCodeUnavailable, msg)
}

// FromTransportf is the formatted variant of FromTransport
func FromTransportf(err error, format string, a ...any) error {
	return FromTransport(err, fmt.Sprintf(format, a...))
}

// IsTimeout reports whether err is a deadline or a network timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) || IsCode(err, ErrorCodeTimeout) {
		return true
	}
	var ne net.Error
	return stderrs.As(err, &ne) && ne.Timeout()
}

// IsRetryable reports whether a backend error is transient. Local cancellation
// and deadlines are never retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	case ErrorCodeUnknown:
		// foreign error: fall through to text checks
	default:
		return false
	}

	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "eof"),
		strings.Contains(s, "server is busy"),
		strings.Contains(s, "model is loading"):
		return true
	default:
		return false
	}
}
