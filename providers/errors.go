package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies adapter failures so callers can decide between retry,
// fallback and hard failure.
type ErrorKind string

const (
	// KindUnconfigured: no credentials for the provider. Triggers the
	// importer's fallback path, never a hard failure.
	KindUnconfigured ErrorKind = "unconfigured"
	// KindUnreachable: network error or timeout. Retryable.
	KindUnreachable ErrorKind = "unreachable"
	// KindAuth: bad or expired credentials. Not retryable without operator
	// intervention.
	KindAuth ErrorKind = "auth"
	// KindRateLimited: provider quota exceeded. Retry with backoff.
	KindRateLimited ErrorKind = "rate_limited"
	// KindData: malformed or unexpected payload. The single record is
	// skipped, not the whole run.
	KindData ErrorKind = "data"
	// KindOrder: provider rejected an order creation.
	KindOrder ErrorKind = "order"
)

// ErrUnsupported is returned by UpdateInventory for providers that are
// read-only for dropship, so callers can tell "nothing to do" from
// "not implemented".
var ErrUnsupported = errors.New("provider does not support inventory updates")

// Error is a typed provider error.
type Error struct {
	Provider string
	Kind     ErrorKind
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a typed provider error.
func NewError(provider string, kind ErrorKind, message string, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" if err is not a provider error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsRetryable reports whether err is transient (network or rate limit).
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindUnreachable, KindRateLimited:
		return true
	}
	return false
}
