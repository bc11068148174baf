// Package resilience provides error classification, retry and circuit
// breaker patterns for provider calls.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/research-engine/internal/model"
)

// ProviderError is a classified failure from a provider adapter.
type ProviderError struct {
	Provider   string
	Kind       model.ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err with a classification.
func NewProviderError(provider string, kind model.ErrorKind, statusCode int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: statusCode, Err: err}
}

// KindOf extracts the error kind from err. Unclassified errors map to
// timeout when they carry timeout semantics, otherwise to "other".
func KindOf(err error) model.ErrorKind {
	if err == nil {
		return ""
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorKindTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return model.ErrorKindServerUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return model.ErrorKindServerUnavailable
		}
	}

	return model.ErrorKindOther
}

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(statusCode int) model.ErrorKind {
	switch {
	case statusCode == 401 || statusCode == 403:
		return model.ErrorKindAuth
	case statusCode == 429:
		return model.ErrorKindRateLimited
	case statusCode == 408 || statusCode == 504:
		return model.ErrorKindTimeout
	case statusCode >= 500:
		return model.ErrorKindServerUnavailable
	default:
		return model.ErrorKindOther
	}
}

// Retryable reports whether a failure of the given kind is worth retrying.
// Auth and rate-limit failures are terminal: retrying either cannot succeed
// or burns quota.
func Retryable(kind model.ErrorKind) bool {
	return kind == model.ErrorKindServerUnavailable || kind == model.ErrorKindTimeout
}
