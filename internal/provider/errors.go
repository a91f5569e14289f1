package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies one failed provider call. The acquisition pipeline
// branches on this instead of on raw errors: transient and rate-limited
// failures are retried with backoff, not-found and malformed failures fall
// straight through to the next provider.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailureRateLimited
	FailureNotFound
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate limited"
	case FailureNotFound:
		return "not found"
	case FailureMalformed:
		return "malformed response"
	default:
		return "transient"
	}
}

// Retryable reports whether a failure of this kind may succeed on retry.
// Retries are reserved for transient conditions, never for deterministic
// input mismatches.
func (k FailureKind) Retryable() bool {
	return k == FailureTransient || k == FailureRateLimited
}

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err as a classified failure of the named provider.
func NewError(name string, kind FailureKind, err error) *Error {
	return &Error{Provider: name, Kind: kind, Err: err}
}

// Classify extracts the failure kind from an error. Unclassified errors
// (plain network failures, timeouts) count as transient.
func Classify(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureTransient
}

// kindForStatus maps an HTTP status code to a failure kind.
func kindForStatus(code int) FailureKind {
	switch {
	case code == http.StatusNotFound:
		return FailureNotFound
	case code == http.StatusTooManyRequests:
		return FailureRateLimited
	case code >= 500:
		return FailureTransient
	default:
		// Remaining 4xx: deterministic request problem, no point retrying.
		return FailureMalformed
	}
}
