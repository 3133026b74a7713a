// Package errors is the project error type, import it as perr
// every failure that reaches a client carries one of these codes
package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine readable half of an error, values are part of the wire format
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeMethodNotAllowed
	ErrorCodeUpstream // the swarm rejected or failed the request
	ErrorCodeTimeout  // no answer before the deadline
	ErrorCodeCanceled // the caller went away first
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeUnavailable:      http.StatusServiceUnavailable,
	ErrorCodeTooManyRequests:  http.StatusTooManyRequests,
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeJSON:             http.StatusBadRequest,
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrorCodeUpstream:         http.StatusBadGateway,
	ErrorCodeTimeout:          http.StatusGatewayTimeout,
	ErrorCodeCanceled:         http.StatusServiceUnavailable,
}

// HTTPStatusCode maps a code onto a status, unmapped codes are 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error carries a code, a client facing message, an optional input field and the cause
type Error struct {
	code  ErrorCode
	msg   string
	field string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending input, if any
func (e *Error) Field() string { return e.field }

// Wire is the client facing view, the cause never leaves the process
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// New returns an error with code and msg
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with formatting
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap keeps cause for logs and errors.Is while msg is what the client sees
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// WithField returns a copy of err naming the offending input, foreign errors pass through
func WithField(err error, field string) error {
	var e *Error
	if !stderrs.As(err, &e) {
		return err
	}
	c := *e
	c.field = field
	return &c
}

// NotFoundf is a missing route or resource
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Validationf is input that decoded but is not acceptable
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// JSONErrf is a body that could not be decoded
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf is a recovered panic
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// TooManyRequestsf is a spent rate budget
func TooManyRequestsf(format string, a ...any) error {
	return Newf(ErrorCodeTooManyRequests, format, a...)
}

// CodeOf finds the outermost *Error in err's chain, anything else is Unknown
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrs.As(err, &e) {
		return e.code
	}
	return ErrorCodeUnknown
}

// HTTPStatus is HTTPStatusCode(CodeOf(err))
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WireFrom renders err for clients, foreign errors keep their text under Unknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	var e *Error
	if stderrs.As(err, &e) {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Retryable reports whether the same request may succeed later
// timeouts and cancellations are transient, a swarm rejection usually means a bad magnet
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch CodeOf(err) {
	case ErrorCodeTimeout, ErrorCodeCanceled, ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	return false
}
