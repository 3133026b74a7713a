package memswarm

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"magnetinfo/internal/services/resolver/domain"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
)

// ErrClosed is returned by Join and Ping after Close
var ErrClosed = errors.New("memswarm: client closed")

// Script describes what a joined session eventually emits
// a zero Script never emits anything
type Script struct {
	Metadata *domain.Metadata
	Err      error
	Delay    time.Duration
	// JoinErr fails Join itself, before any session exists
	JoinErr error
}

// Fallback produces a script for identifiers that have none registered
type Fallback func(identifier string) (Script, bool)

// Option configures a Swarm
type Option func(*Swarm)

// WithClock sets the clock used for script delays
func WithClock(c clock.Clock) Option { return func(s *Swarm) { s.clock = c } }

// WithScript registers a script for identifier
func WithScript(identifier string, sc Script) Option {
	return func(s *Swarm) { s.scripts[identifier] = sc }
}

// WithFallback sets the script source for unscripted identifiers
func WithFallback(fn Fallback) Option { return func(s *Swarm) { s.fallback = fn } }

// Swarm implements domain.SwarmClient in memory
type Swarm struct {
	mu       sync.Mutex
	clock    clock.Clock
	scripts  map[string]Script
	fallback Fallback
	sessions map[string][]*Session
	joins    chan *Session
	closed   bool
}

var _ domain.SwarmClient = (*Swarm)(nil)

// New returns an empty swarm
func New(opts ...Option) *Swarm {
	s := &Swarm{
		clock:    clock.New(),
		scripts:  map[string]Script{},
		sessions: map[string][]*Session{},
		joins:    make(chan *Session, 64),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Script registers or replaces the script for identifier
func (s *Swarm) Script(identifier string, sc Script) {
	s.mu.Lock()
	s.scripts[identifier] = sc
	s.mu.Unlock()
}

// Joins feeds every session created by Join, dropping entries when nobody reads
func (s *Swarm) Joins() <-chan *Session { return s.joins }

// Join implements domain.SwarmClient, the script is cancelled if ctx ends before it fires
func (s *Swarm) Join(ctx context.Context, identifier string, _ domain.JoinOptions) (domain.SessionHandle, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	sc, ok := s.scripts[identifier]
	fb := s.fallback
	s.mu.Unlock()

	if !ok && fb != nil {
		sc, _ = fb(identifier)
	}
	if sc.JoinErr != nil {
		return nil, sc.JoinErr
	}

	sess := &Session{
		swarm:      s,
		identifier: identifier,
		joinDone:   ctx.Done(),
		meta:       make(chan domain.Metadata, 1),
		errs:       make(chan error, 1),
	}
	if key := InfoHash(identifier); key != "" {
		sess.key = key
		s.register(sess)
	}
	s.schedule(sess, sc)
	context.AfterFunc(ctx, sess.stopScript)

	select {
	case s.joins <- sess:
	default:
	}
	return sess, nil
}

func (s *Swarm) schedule(sess *Session, sc Script) {
	var fire func()
	switch {
	case sc.Err != nil:
		err := sc.Err
		fire = func() { sess.EmitError(err) }
	case sc.Metadata != nil:
		md := *sc.Metadata
		fire = func() { sess.EmitMetadata(md) }
	default:
		return
	}
	if sc.Delay <= 0 {
		fire()
		return
	}
	t := s.clock.AfterFunc(sc.Delay, fire)
	sess.mu.Lock()
	sess.timer = t
	sess.mu.Unlock()
}

// Lookup implements domain.SwarmClient
func (s *Swarm) Lookup(key string) (domain.SessionHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[key]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Len returns the number of registered sessions
func (s *Swarm) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.sessions {
		n += len(l)
	}
	return n
}

// Ping reports ErrClosed once the swarm has been closed
func (s *Swarm) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close destroys every registered session and rejects further joins
func (s *Swarm) Close() error {
	s.mu.Lock()
	s.closed = true
	var all []*Session
	for _, l := range s.sessions {
		all = append(all, l...)
	}
	s.mu.Unlock()

	var err error
	for _, sess := range all {
		err = multierr.Append(err, sess.Destroy())
	}
	return err
}

func (s *Swarm) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.key] = append(s.sessions[sess.key], sess)
	s.mu.Unlock()
}

func (s *Swarm) unregister(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.sessions[sess.key]
	for i, v := range list {
		if v == sess {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.sessions, sess.key)
		return
	}
	s.sessions[sess.key] = list
}

// InfoHash extracts the lower-cased xt=urn:btih: hash of a magnet locator, empty when absent
func InfoHash(locator string) string {
	q, ok := magnetQuery(locator)
	if !ok {
		return ""
	}
	for _, xt := range q["xt"] {
		if h, found := strings.CutPrefix(strings.ToLower(xt), "urn:btih:"); found && h != "" {
			return h
		}
	}
	return ""
}

func magnetQuery(locator string) (url.Values, bool) {
	u, err := url.Parse(locator)
	if err != nil || !strings.EqualFold(u.Scheme, "magnet") {
		return nil, false
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, false
	}
	return q, true
}

// Echo is a Fallback that answers every magnet after delay with metadata built from
// its own parameters: dn for the name and xl for the exact length
func Echo(delay time.Duration) Fallback {
	return func(identifier string) (Script, bool) {
		q, ok := magnetQuery(identifier)
		if !ok {
			return Script{JoinErr: errors.New("invalid magnet link")}, true
		}
		name := q.Get("dn")
		if name == "" {
			name = InfoHash(identifier)
		}
		size, _ := strconv.ParseUint(q.Get("xl"), 10, 64)
		return Script{
			Delay: delay,
			Metadata: &domain.Metadata{
				Name:       name,
				Locator:    identifier,
				TotalBytes: size,
				Files:      []domain.File{{Name: name, Path: name, SizeBytes: size}},
			},
		}, true
	}
}
