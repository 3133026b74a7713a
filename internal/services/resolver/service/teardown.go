package service

import (
	"fmt"
	"sync"

	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/services/resolver/domain"
)

// teardown releases the one session a resolution created
// run is safe to call any number of times, only the first call acts
type teardown struct {
	once    sync.Once
	swarm   domain.SwarmClient
	handle  domain.SessionHandle
	log     *logger.Logger
	metrics *Metrics
}

func newTeardown(swarm domain.SwarmClient, h domain.SessionHandle, log *logger.Logger, m *Metrics) *teardown {
	return &teardown{swarm: swarm, handle: h, log: log, metrics: m}
}

func (t *teardown) run() { t.once.Do(t.destroy) }

// destroy never returns or panics past this frame, failures are logged only
func (t *teardown) destroy() {
	defer t.metrics.sessionClosed()
	defer func() {
		if v := recover(); v != nil {
			t.fail("", fmt.Errorf("destroy panicked: %v", v))
		}
	}()

	key := t.handle.Key()
	if key == "" {
		t.log.Debug().Msg("session never received a key, nothing to tear down")
		return
	}
	if _, ok := t.swarm.Lookup(key); !ok {
		t.fail(key, fmt.Errorf("session vanished before teardown"))
		return
	}
	if err := t.handle.Destroy(); err != nil {
		t.fail(key, err)
		return
	}
	t.log.Debug().Str("info_hash", key).Msg("session destroyed")
}

func (t *teardown) fail(key string, err error) {
	t.metrics.teardownFailed()
	t.log.Warn().
		Err(err).
		Str("kind", domain.KindTeardownFailure.String()).
		Str("info_hash", key).
		Msg("teardown failed")
}
