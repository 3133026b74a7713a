package btswarm

import (
	"context"
	"errors"
	"sync"

	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/anacrolix/torrent"
	"go.uber.org/multierr"
)

var (
	// ErrClosed is returned by Join and Ping after Close
	ErrClosed = errors.New("btswarm: client closed")
	// ErrDestroyed is returned by repeated Destroy calls
	ErrDestroyed = errors.New("btswarm: session already destroyed")
	// ErrTorrentClosed is emitted when the torrent goes away before its info arrives
	ErrTorrentClosed = errors.New("torrent closed before metadata arrived")
)

// entry is one torrent shared by every session joined on its info hash
type entry struct {
	t        *torrent.Torrent
	sessions []*Session
}

// Client implements domain.SwarmClient over an anacrolix torrent client
type Client struct {
	cl       *torrent.Client
	trackers []string
	log      *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

var _ domain.SwarmClient = (*Client)(nil)

// New starts a torrent client listening per cfg
func New(cfg Config) (*Client, error) {
	cl, err := torrent.NewClient(cfg.client())
	if err != nil {
		return nil, err
	}
	return &Client{
		cl:       cl,
		trackers: cfg.Trackers,
		log:      logger.Named("btswarm"),
		entries:  map[string]*entry{},
	}, nil
}

// Join implements domain.SwarmClient
func (c *Client) Join(_ context.Context, identifier string, opts domain.JoinOptions) (domain.SessionHandle, error) {
	m, err := ParseMagnet(identifier)
	if err != nil {
		return nil, err
	}
	key := m.InfoHash.HexString()
	extra := mergeTrackers(c.trackers, opts.Trackers)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	e, ok := c.entries[key]
	if !ok {
		t, err := c.cl.AddMagnet(identifier)
		if err != nil {
			return nil, err
		}
		e = &entry{t: t}
		c.entries[key] = e
	}
	if len(extra) > 0 {
		e.t.AddTrackers([][]string{extra})
	}

	s := &Session{
		client: c,
		key:    key,
		t:      e.t,
		magnet: m,
		extra:  extra,
		meta:   make(chan domain.Metadata, 1),
		errs:   make(chan error, 1),
		stop:   make(chan struct{}),
	}
	e.sessions = append(e.sessions, s)
	go s.watch()

	c.log.Debug().Str("info_hash", key).Int("sessions", len(e.sessions)).Msg("joined")
	return s, nil
}

// Lookup implements domain.SwarmClient
func (c *Client) Lookup(key string) (domain.SessionHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || len(e.sessions) == 0 {
		return nil, false
	}
	return e.sessions[0], true
}

// Len returns the number of live sessions across all torrents
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		n += len(e.sessions)
	}
	return n
}

// Ping reports ErrClosed once the client has been closed
func (c *Client) Ping(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// Close drops every torrent and shuts the client down
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var all []*Session
	for _, e := range c.entries {
		all = append(all, e.sessions...)
	}
	c.mu.Unlock()

	var err error
	for _, s := range all {
		err = multierr.Append(err, s.Destroy())
	}
	return multierr.Combine(append([]error{err}, c.cl.Close()...)...)
}

// release detaches s and drops the torrent when no session holds it any more
// the drop happens under c.mu so a concurrent Join never picks up a torrent on its way out
func (c *Client) release(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[s.key]
	if !ok {
		return
	}
	for i, v := range e.sessions {
		if v == s {
			e.sessions = append(e.sessions[:i], e.sessions[i+1:]...)
			break
		}
	}
	if len(e.sessions) > 0 {
		return
	}
	delete(c.entries, s.key)
	e.t.Drop()
	c.log.Debug().Str("info_hash", s.key).Msg("torrent dropped")
}
