package module

import (
	"time"

	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/services/resolver/domain"
)

// Options controls resolution deadlines and join behavior
type Options struct {
	Deadline    time.Duration // applied when a request does not choose one
	MaxDeadline time.Duration // cap on per-request overrides

	// extra trackers announced on every join
	Trackers []string
}

// FromConfig reads RESOLVER_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("RESOLVER_")
	return Options{
		Deadline:    rc.MayDuration("DEADLINE", domain.DefaultDeadline),
		MaxDeadline: rc.MayDuration("MAX_DEADLINE", 2*time.Minute),
		Trackers:    rc.MayCSV("TRACKERS", nil),
	}
}
