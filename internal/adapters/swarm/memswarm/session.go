package memswarm

import (
	"errors"
	"sync"

	"magnetinfo/internal/services/resolver/domain"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// ErrDestroyed is returned by repeated Destroy calls
var ErrDestroyed = errors.New("memswarm: session already destroyed")

// Session implements domain.SessionHandle
type Session struct {
	swarm      *Swarm
	identifier string
	joinDone   <-chan struct{}

	mu        sync.Mutex
	key       string
	emitted   bool
	destroyed bool
	destroys  int
	timer     *clock.Timer

	meta chan domain.Metadata
	errs chan error
}

var _ domain.SessionHandle = (*Session)(nil)

// Identifier returns the locator the session was joined with
func (s *Session) Identifier() string { return s.identifier }

// Key implements domain.SessionHandle
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Metadata implements domain.SessionHandle
func (s *Session) Metadata() <-chan domain.Metadata { return s.meta }

// Errors implements domain.SessionHandle
func (s *Session) Errors() <-chan error { return s.errs }

// live reports whether the session may still emit, callers hold s.mu
// a session whose join context ended was given up on and stays silent
func (s *Session) live() bool {
	select {
	case <-s.joinDone:
		return false
	default:
	}
	return !s.emitted && !s.destroyed
}

// EmitMetadata delivers md while the session is live
// a session without a key takes md.Key, or a random one, and registers under it
func (s *Session) EmitMetadata(md domain.Metadata) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() {
		return false
	}
	s.emitted = true
	if s.key == "" {
		s.key = md.Key
		if s.key == "" {
			s.key = uuid.NewString()
		}
		s.swarm.register(s)
	}
	md.Key = s.key
	s.meta <- md
	return true
}

// EmitError delivers err while the session is live
func (s *Session) EmitError(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live() {
		return false
	}
	s.emitted = true
	s.errs <- err
	return true
}

// stopScript drops a pending script once the join context ends
func (s *Session) stopScript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Destroy implements domain.SessionHandle
func (s *Session) Destroy() error {
	s.mu.Lock()
	s.destroys++
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	s.destroyed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	registered := s.key != ""
	s.mu.Unlock()

	if registered {
		s.swarm.unregister(s)
	}
	return nil
}

// Destroyed reports whether Destroy has been called
func (s *Session) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// DestroyCalls returns how many times Destroy has been called
func (s *Session) DestroyCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroys
}
