// Package http provides http transport for the resolver
package http

import (
	"errors"
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	perr "magnetinfo/internal/platform/errors"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/platform/net/http/bind"
	"magnetinfo/internal/services/resolver/domain"
	svc "magnetinfo/internal/services/resolver/service"
)

// MaxBodyBytes caps resolve request bodies
const MaxBodyBytes = 10 << 10

// Register mounts POST and GET /info
// timeout_ms above maxDeadline is rejected, a non positive maxDeadline accepts any
func Register(r phttp.Router, s svc.Service, maxDeadline time.Duration) {
	h := &handlers{svc: s, max: maxDeadline}
	r.Post("/info", phttp.Serve(phttp.Body(bind.JSONOptions{MaxBytes: MaxBodyBytes}, h.resolve)))
	r.Get("/info", phttp.Serve(h.resolveQuery))
}

type handlers struct {
	svc svc.Service
	max time.Duration
}

// swagger:route POST /torrents/info Torrents resolveInfo
// @Summary Resolve torrent metadata from a magnet link
// @Tags torrents
// @Accept json
// @Produce json
// @Param payload body domain.ResolveInput true "Magnet link"
// @Success 200 {object} domain.ResolvedMetadata "ok"
// @Failure 400 {object} phttp.Envelope "missing or malformed input"
// @Failure 502 {object} phttp.Envelope "swarm reported a failure"
// @Failure 504 {object} phttp.Envelope "metadata did not arrive in time"
// @Router /torrents/info [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	return h.run(r, in)
}

// swagger:route GET /torrents/info Torrents resolveInfoQuery
// @Summary Resolve torrent metadata from a magnet query parameter
// @Tags torrents
// @Produce json
// @Param magnet query string true "Magnet link"
// @Param timeout_ms query int false "Deadline override in milliseconds"
// @Success 200 {object} domain.ResolvedMetadata "ok"
// @Failure 400 {object} phttp.Envelope "missing or malformed input"
// @Failure 502 {object} phttp.Envelope "swarm reported a failure"
// @Failure 504 {object} phttp.Envelope "metadata did not arrive in time"
// @Router /torrents/info [get]
func (h *handlers) resolveQuery(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	in := domain.ResolveInput{MagnetLink: q.Get("magnet")}
	if raw := strings.TrimSpace(q.Get("timeout_ms")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, perr.WithField(perr.Validationf("timeout_ms must be a positive integer"), "timeout_ms")
		}
		in.TimeoutMs = n
	}
	return h.run(r, in)
}

func (h *handlers) run(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	if h.max > 0 && int64(in.TimeoutMs) > h.max.Milliseconds() {
		return nil, perr.WithField(perr.Validationf("timeout_ms must be at most %d", h.max.Milliseconds()), "timeout_ms")
	}
	deadline := time.Duration(in.TimeoutMs) * time.Millisecond
	out, err := h.svc.Resolve(r.Context(), in.MagnetLink, deadline)
	if err != nil {
		return nil, toHTTP(err)
	}
	return out, nil
}

// toHTTP maps a resolution failure onto the platform error codes
func toHTTP(err error) error {
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		return err
	}
	switch re.Kind {
	case domain.KindInvalidIdentifier:
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, re.Message), "magnet_link")
	case domain.KindSwarmError:
		return perr.Wrap(err, perr.ErrorCodeUpstream, "failed to get torrent info: "+re.Message)
	case domain.KindTimeout:
		return perr.Wrap(err, perr.ErrorCodeTimeout, re.Message)
	case domain.KindCanceled:
		return perr.Wrap(err, perr.ErrorCodeCanceled, re.Message)
	default:
		return perr.Wrap(err, perr.ErrorCodeUnknown, re.Message)
	}
}
