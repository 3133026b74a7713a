// Package service contains the magnet metadata resolution workflow
//
// Resolve joins the swarm for one locator and races the session's metadata and
// error signals against a deadline timer and the caller's context. The first
// signal settles the outcome; anything arriving later is dropped. The session is
// torn down exactly once before Resolve returns, whatever the outcome.
package service

import (
	"context"
	"errors"
	"time"

	"magnetinfo/internal/core/bytesize"
	"magnetinfo/internal/core/race"
	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Service defines the service contract for resolution
type Service interface{ domain.ServicePort }

// Options configures a Svc, zero values fall back to defaults
type Options struct {
	// Deadline applies when a caller passes a non positive deadline
	Deadline time.Duration
	// MaxDeadline caps caller supplied deadlines, zero means uncapped
	MaxDeadline time.Duration
	Clock       clock.Clock
	Metrics     *Metrics
	Logger      *logger.Logger
	Join        domain.JoinOptions
}

// Svc implements the Service interface
type Svc struct {
	swarm       domain.SwarmClient
	clock       clock.Clock
	deadline    time.Duration
	maxDeadline time.Duration
	join        domain.JoinOptions
	metrics     *Metrics
	log         *logger.Logger
}

var _ Service = (*Svc)(nil)

// New creates a resolver bound to a swarm client
func New(swarm domain.SwarmClient, opt Options) *Svc {
	if swarm == nil {
		panic("resolver.Service requires a non nil SwarmClient")
	}
	s := &Svc{
		swarm:       swarm,
		clock:       opt.Clock,
		deadline:    opt.Deadline,
		maxDeadline: opt.MaxDeadline,
		join:        opt.Join,
		metrics:     opt.Metrics,
		log:         opt.Logger,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.deadline <= 0 {
		s.deadline = domain.DefaultDeadline
	}
	if s.maxDeadline > 0 && s.deadline > s.maxDeadline {
		s.deadline = s.maxDeadline
	}
	if s.log == nil {
		s.log = logger.Named("resolver")
	}
	return s
}

// outcome is the value the race settles on, exactly one field is meaningful
type outcome struct {
	md  domain.Metadata
	err *domain.ResolutionError
}

// Deadline returns the effective deadline for a caller supplied value
func (s *Svc) Deadline(d time.Duration) time.Duration {
	if d <= 0 {
		return s.deadline
	}
	if s.maxDeadline > 0 && d > s.maxDeadline {
		return s.maxDeadline
	}
	return d
}

// Resolve implements domain.ServicePort
func (s *Svc) Resolve(ctx context.Context, identifier string, deadline time.Duration) (domain.ResolvedMetadata, error) {
	id, err := domain.NormalizeIdentifier(identifier)
	if err != nil {
		s.metrics.observe(domain.KindInvalidIdentifier.String(), 0)
		return domain.ResolvedMetadata{}, err
	}
	deadline = s.Deadline(deadline)
	lc := s.log.With().Str("attempt_id", uuid.NewString())
	if rid := logger.RequestID(ctx); rid != "" {
		lc = lc.Str("request_id", rid)
	}
	log := lc.Logger()

	// armed before the join so a slow join still counts against the deadline
	timer := s.clock.Timer(deadline)
	defer timer.Stop()
	start := s.clock.Now()

	if ctx.Err() != nil {
		return s.fail(&log, start, contextError(ctx))
	}

	// the join context ends with this call, so a session nobody waits on stops discovering
	jctx, release := context.WithCancel(ctx)
	defer release()
	h, err := s.swarm.Join(jctx, id, s.join)
	if err != nil {
		// no session exists, so there is nothing to tear down
		return s.fail(&log, start, domain.NewError(domain.KindSwarmError, err.Error(), err))
	}
	s.metrics.sessionOpened()
	log.Debug().Str("identifier", id).Dur("deadline", deadline).Msg("joined swarm")

	td := newTeardown(s.swarm, h, &log, s.metrics)
	defer td.run()

	arms := []race.Arm[outcome]{
		race.Recv(h.Metadata(), func(md domain.Metadata) outcome { return outcome{md: md} }),
		race.Recv(h.Errors(), func(err error) outcome { return outcome{err: swarmError(err)} }),
		race.Recv(timer.C, func(time.Time) outcome {
			return outcome{err: domain.NewError(domain.KindTimeout, domain.TimeoutMessage, context.DeadlineExceeded)}
		}),
	}
	if done := ctx.Done(); done != nil {
		arms = append(arms, race.Closed(done, func() outcome { return outcome{err: contextError(ctx)} }))
	}

	o := race.First(arms...)
	if o.err != nil {
		return s.fail(&log, start, o.err)
	}

	res := shape(o.md, h.Key(), id)
	elapsed := s.clock.Since(start)
	s.metrics.observe("ok", elapsed)
	log.Info().
		Str("outcome", "ok").
		Str("info_hash", res.SessionKey).
		Uint32("peers", res.PeerCount).
		Int("files", len(res.Files)).
		Dur("elapsed", elapsed).
		Msg("metadata resolved")
	return res, nil
}

func (s *Svc) fail(log *logger.Logger, start time.Time, rerr *domain.ResolutionError) (domain.ResolvedMetadata, error) {
	elapsed := s.clock.Since(start)
	s.metrics.observe(rerr.Kind.String(), elapsed)
	log.Info().
		Str("outcome", rerr.Kind.String()).
		Str("error", rerr.Message).
		Dur("elapsed", elapsed).
		Msg("resolution failed")
	return domain.ResolvedMetadata{}, rerr
}

// contextError classifies a finished caller context, an expired caller deadline counts as a timeout
func contextError(ctx context.Context) *domain.ResolutionError {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindTimeout, domain.TimeoutMessage, err)
	}
	return domain.NewError(domain.KindCanceled, "resolution canceled by caller", err)
}

func swarmError(err error) *domain.ResolutionError {
	if err == nil {
		return domain.NewError(domain.KindSwarmError, "swarm reported an unspecified failure", nil)
	}
	return domain.NewError(domain.KindSwarmError, err.Error(), err)
}

// shape copies md into the success payload, file order is preserved as reported
func shape(md domain.Metadata, key, identifier string) domain.ResolvedMetadata {
	if md.Key == "" {
		md.Key = key
	}
	if md.Locator == "" {
		md.Locator = identifier
	}
	files := make([]domain.File, len(md.Files))
	copy(files, md.Files)
	return domain.ResolvedMetadata{
		Name:           md.Name,
		SessionKey:     md.Key,
		Locator:        md.Locator,
		TotalSizeBytes: md.TotalBytes,
		PeerCount:      md.Peers,
		Files:          files,
		FormattedSize:  bytesize.Format(md.TotalBytes),
	}
}
