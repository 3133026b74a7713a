package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure
type Kind uint8

const (
	// KindInvalidIdentifier is a caller precondition failure, detected before any join
	KindInvalidIdentifier Kind = iota + 1
	// KindSwarmError is a failure reported by the swarm client before metadata arrived
	KindSwarmError
	// KindTimeout is a deadline that elapsed with no terminal swarm signal
	KindTimeout
	// KindCanceled is a caller that stopped waiting before any terminal signal
	KindCanceled
	// KindTeardownFailure is logged only and never returned to callers
	KindTeardownFailure
)

// TimeoutMessage is the message carried by every KindTimeout error
const TimeoutMessage = "metadata fetch exceeded the deadline"

// String implements fmt.Stringer and doubles as the metrics/log label
func (k Kind) String() string {
	switch k {
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindSwarmError:
		return "swarm_error"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindTeardownFailure:
		return "teardown_failure"
	default:
		return "unknown"
	}
}

// ResolutionError is the typed failure of a resolution
type ResolutionError struct {
	Kind    Kind
	Message string
	cause   error
}

// NewError builds a ResolutionError, cause may be nil
func NewError(kind Kind, msg string, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, Message: msg, cause: cause}
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *ResolutionError) Unwrap() error { return e.cause }

// Is matches any ResolutionError of the same Kind so callers can use errors.Is with the sentinels below
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok || t == nil || e == nil {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidIdentifier = &ResolutionError{Kind: KindInvalidIdentifier}
	ErrSwarm             = &ResolutionError{Kind: KindSwarmError}
	ErrTimeout           = &ResolutionError{Kind: KindTimeout}
	ErrCanceled          = &ResolutionError{Kind: KindCanceled}
)

// KindOf extracts the Kind of err, zero when err is not a ResolutionError
func KindOf(err error) Kind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
