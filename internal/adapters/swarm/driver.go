// Package swarm selects the swarm adapter a process runs against
package swarm

import (
	"context"

	"magnetinfo/internal/adapters/swarm/btswarm"
	"magnetinfo/internal/adapters/swarm/memswarm"
	"magnetinfo/internal/platform/config"
	perr "magnetinfo/internal/platform/errors"
	"magnetinfo/internal/services/resolver/domain"
)

// Drivers understood by Open
const (
	DriverTorrent = "torrent"
	DriverMemory  = "memory"
)

// Driver is a swarm client the process owns and must close
type Driver interface {
	domain.SwarmClient
	Ping(ctx context.Context) error
	Len() int
	Close() error
}

// Open builds the adapter named by SWARM_DRIVER, an unknown name panics
//
// the memory driver answers every well formed magnet from its query string
// after SWARM_MEMORY_DELAY, which is enough for local runs and smoke tests
func Open(cfg config.Conf) (Driver, error) {
	sc := cfg.Prefix("SWARM_")
	if sc.MayEnum("DRIVER", DriverTorrent, DriverTorrent, DriverMemory) == DriverMemory {
		delay := sc.MayDuration("MEMORY_DELAY", 0)
		return memswarm.New(memswarm.WithFallback(memswarm.Echo(delay))), nil
	}
	c, err := btswarm.New(btswarm.FromConfig(cfg))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "start torrent client")
	}
	return c, nil
}
