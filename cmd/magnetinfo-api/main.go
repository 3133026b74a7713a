// Command magnetinfo-api serves torrent metadata resolution over HTTP
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"magnetinfo/internal/adapters/swarm"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/platform/metrics"
	phttp "magnetinfo/internal/platform/net/http"

	"magnetinfo/internal/services/api"

	"golang.org/x/sync/errgroup"
)

func main() {
	// everything lives under MAGNETINFO_* (ADDR, API_*, RESOLVER_*, SWARM_*)
	cfg := config.New().Prefix("MAGNETINFO_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw, err := swarm.Open(cfg)
	if err != nil {
		l.Panic().Err(err).Msg("swarm open failed")
	}
	defer func() {
		if err := sw.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close swarm")
		}
	}()

	reg := metrics.New()
	srv := phttp.NewServer(cfg)

	opt := api.FromConfig(cfg)
	opt.Logger = l
	opt.Swarm = sw
	opt.Registry = reg
	catalog := api.Mount(srv.Router(), opt)
	l.Info().Strs("modules", catalog.Names()).Msg("api mounted")
	for _, p := range cfg.Problems() {
		l.Warn().Str("key", p.Key).Str("value", p.Value).Str("want", p.Want).Msg("ignored invalid setting")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		report(gctx, sw, cfg.MayDuration("SWARM_REPORT_EVERY", time.Minute))
		return nil
	})

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("http server stopped")
		return
	}
	l.Info().Msg("magnetinfo api stopped")
}

// report logs the live session count until ctx ends
func report(ctx context.Context, sw swarm.Driver, every time.Duration) {
	if every <= 0 {
		return
	}
	log := logger.Named("swarm")
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			log.Debug().Int("sessions", sw.Len()).Msg("swarm sessions")
		}
	}
}
