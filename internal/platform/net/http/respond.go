package http

import (
	"context"
	"encoding/json"
	"net/http"

	perr "magnetinfo/internal/platform/errors"
	"magnetinfo/internal/platform/net/http/bind"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Envelope wraps every API answer, Data on success and Code/Error on failure
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Retryable  bool           `json:"retryable,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// RequestID is the id the request id middleware assigned, empty outside a request
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// JSON writes v with status, no envelope
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes data in a 200 envelope
func RespondOK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Status:     http.StatusText(http.StatusOK),
		RequestID:  RequestID(r.Context()),
		Data:       data,
	})
}

// RespondError writes err in an envelope with its mapped status
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := perr.HTTPStatus(err)
	wire := perr.WireFrom(err)
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       wire.Code,
		Error:      wire.Message,
		Field:      wire.Field,
		RequestID:  RequestID(r.Context()),
		Retryable:  perr.Retryable(err),
	})
}

// Endpoint is the shape API handlers take, a payload for 200 or an error
type Endpoint func(*http.Request) (any, error)

// Serve adapts e to a route handler
func Serve(e Endpoint) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := e(r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondOK(w, r, out)
	}
}

// Body decodes and validates a T from the request before calling fn
func Body[T any](opt bind.JSONOptions, fn func(*http.Request, T) (any, error)) Endpoint {
	return func(r *http.Request) (any, error) {
		in, err := bind.ParseJSON[T](r, opt)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	}
}
