package swarm

import (
	"context"
	"testing"

	"magnetinfo/internal/adapters/swarm/memswarm"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/testkit"
	"magnetinfo/internal/services/resolver/domain"
)

func TestOpen_MemoryDriver(t *testing.T) {
	testkit.Serial(t)
	t.Setenv("MAGNETINFO_DRV_SWARM_DRIVER", "Memory")

	d, err := Open(config.New().Prefix("MAGNETINFO_DRV_"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	if _, ok := d.(*memswarm.Swarm); !ok {
		t.Fatalf("driver = %T", d)
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	h, err := d.Join(context.Background(), "magnet:?xt=urn:btih:abcdef0123456789abcdef0123456789abcdef01&dn=a&xl=10", domain.JoinOptions{})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	md := <-h.Metadata()
	if md.Name != "a" || md.TotalBytes != 10 {
		t.Fatalf("metadata = %+v", md)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	testkit.Serial(t)
	t.Setenv("MAGNETINFO_DRV_SWARM_DRIVER", "carrier-pigeon")

	testkit.MustPanic(t, func() { _, _ = Open(config.New().Prefix("MAGNETINFO_DRV_")) })
}
