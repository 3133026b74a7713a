package btswarm

import (
	"sync"

	"magnetinfo/internal/services/resolver/domain"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
)

// Session implements domain.SessionHandle for one resolution's hold on a torrent
type Session struct {
	client *Client
	key    string
	t      *torrent.Torrent
	magnet metainfo.Magnet
	extra  []string

	meta chan domain.Metadata
	errs chan error
	stop chan struct{}

	mu        sync.Mutex
	destroyed bool
}

var _ domain.SessionHandle = (*Session)(nil)

// Key implements domain.SessionHandle, the lower-case hex info hash
func (s *Session) Key() string { return s.key }

// Metadata implements domain.SessionHandle
func (s *Session) Metadata() <-chan domain.Metadata { return s.meta }

// Errors implements domain.SessionHandle
func (s *Session) Errors() <-chan error { return s.errs }

// Destroy implements domain.SessionHandle
func (s *Session) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	s.destroyed = true
	close(s.stop)
	s.mu.Unlock()

	s.client.release(s)
	return nil
}

// watch emits exactly one signal, channels are buffered so it never blocks
func (s *Session) watch() {
	select {
	case <-s.t.GotInfo():
		s.meta <- s.snapshot()
	case <-s.t.Closed():
		s.errs <- ErrTorrentClosed
	case <-s.stop:
	}
}

func (s *Session) snapshot() domain.Metadata {
	name := s.t.Name()
	tfs := s.t.Files()
	files := make([]domain.File, 0, len(tfs))
	for _, f := range tfs {
		files = append(files, fileEntry(f.Path(), f.Length()))
	}
	st := s.t.Stats()
	return domain.Metadata{
		Name:       name,
		Key:        s.key,
		Locator:    Canonical(s.magnet, name, s.extra),
		TotalBytes: uint64(max(s.t.Length(), 0)),
		Peers:      uint32(max(st.TotalPeers, 0)),
		Files:      files,
	}
}
