package btswarm

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"magnetinfo/internal/services/resolver/domain"

	"github.com/anacrolix/torrent/metainfo"
)

// ErrInvalidMagnet wraps every locator parse failure
var ErrInvalidMagnet = errors.New("invalid magnet link")

// ParseMagnet validates a locator and returns the parsed magnet
func ParseMagnet(locator string) (metainfo.Magnet, error) {
	if !strings.HasPrefix(strings.ToLower(locator), "magnet:") {
		return metainfo.Magnet{}, fmt.Errorf("%w: missing magnet scheme", ErrInvalidMagnet)
	}
	m, err := metainfo.ParseMagnetUri(locator)
	if err != nil {
		return metainfo.Magnet{}, fmt.Errorf("%w: %v", ErrInvalidMagnet, err)
	}
	if m.InfoHash == (metainfo.Hash{}) {
		return metainfo.Magnet{}, fmt.Errorf("%w: missing info hash", ErrInvalidMagnet)
	}
	return m, nil
}

// Canonical rebuilds the magnet with the resolved name and the union of trackers
func Canonical(m metainfo.Magnet, name string, extra []string) string {
	out := metainfo.Magnet{
		InfoHash:    m.InfoHash,
		DisplayName: name,
		Trackers:    mergeTrackers(m.Trackers, extra),
	}
	if out.DisplayName == "" {
		out.DisplayName = m.DisplayName
	}
	return out.String()
}

func mergeTrackers(own, extra []string) []string {
	seen := make(map[string]struct{}, len(own)+len(extra))
	var out []string
	for _, list := range [][]string{own, extra} {
		for _, tr := range list {
			tr = strings.TrimSpace(tr)
			if tr == "" {
				continue
			}
			if _, dup := seen[tr]; dup {
				continue
			}
			seen[tr] = struct{}{}
			out = append(out, tr)
		}
	}
	return out
}

// fileEntry turns a torrent relative path into the reported file shape
func fileEntry(p string, length int64) domain.File {
	p = filepath.ToSlash(p)
	return domain.File{Name: path.Base(p), Path: p, SizeBytes: uint64(max(length, 0))}
}

func defaultDataDir() string {
	return filepath.Join(os.TempDir(), "magnetinfo")
}
