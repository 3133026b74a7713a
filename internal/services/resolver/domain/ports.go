package domain

import (
	"context"
	"time"
)

// SessionHandle is one in-flight join against the swarm
// Metadata and Errors together deliver at most one value
type SessionHandle interface {
	// Key is the stable session key, empty until the swarm assigns one
	Key() string
	// Metadata delivers the handshake result
	Metadata() <-chan Metadata
	// Errors delivers a fatal swarm failure
	Errors() <-chan error
	// Destroy releases every swarm resource held by the session
	Destroy() error
}

// SwarmClient is the process-wide registry of swarm sessions
// implementations synchronize internally; callers treat each method as atomic
type SwarmClient interface {
	// Join starts a session without waiting on the network
	// ctx scopes discovery, a session that has not emitted when ctx ends never will
	Join(ctx context.Context, identifier string, opts JoinOptions) (SessionHandle, error)
	// Lookup reports whether a session with key is still registered
	Lookup(key string) (SessionHandle, bool)
}

// Pinger is implemented by swarm clients that can report their own health
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServicePort is the resolution contract exposed to other modules
type ServicePort interface {
	Resolve(ctx context.Context, identifier string, deadline time.Duration) (ResolvedMetadata, error)
}
