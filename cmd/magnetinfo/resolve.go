package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"magnetinfo/internal/adapters/swarm"
	"magnetinfo/internal/modkit"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/services/resolver/domain"
	rmodule "magnetinfo/internal/services/resolver/module"

	"github.com/spf13/cobra"
)

type resolveFlags struct {
	timeout  time.Duration
	asJSON   bool
	dataDir  string
	noDHT    bool
	trackers []string
	memory   bool
}

func resolveCmd() *cobra.Command {
	var f resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <magnet>",
		Short: "Join the swarm and print the torrent's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, err := resolve(ctx, config.New().Prefix("MAGNETINFO_").With(f.settings()), args[0])
			if err != nil {
				return err
			}
			if f.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, err = cmd.OutOrStdout().Write([]byte(renderMetadata(out) + "\n"))
			return err
		},
	}

	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", domain.DefaultDeadline, "how long to wait for metadata")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "torrent client working directory")
	cmd.Flags().BoolVar(&f.noDHT, "no-dht", false, "disable DHT peer discovery")
	cmd.Flags().StringSliceVar(&f.trackers, "tracker", nil, "extra tracker to announce to (repeatable)")
	cmd.Flags().BoolVar(&f.memory, "memory", false, "answer from the magnet's own query string instead of the network")
	return cmd
}

// settings are the flags as MAGNETINFO_ relative config, anything unset keeps its env value
// the timeout is both deadline and cap, a terminal user asked for exactly that long
func (f resolveFlags) settings() map[string]string {
	s := map[string]string{
		"RESOLVER_DEADLINE":     f.timeout.String(),
		"RESOLVER_MAX_DEADLINE": f.timeout.String(),
	}
	if f.memory {
		s["SWARM_DRIVER"] = swarm.DriverMemory
	}
	if f.dataDir != "" {
		s["SWARM_DATA_DIR"] = f.dataDir
	}
	if f.noDHT {
		s["SWARM_NO_DHT"] = strconv.FormatBool(true)
	}
	if len(f.trackers) > 0 {
		s["RESOLVER_TRACKERS"] = strings.Join(f.trackers, ",")
	}
	return s
}

// resolve runs one resolution through the resolver module's port
func resolve(ctx context.Context, cfg config.Conf, magnet string) (domain.ResolvedMetadata, error) {
	sw, err := swarm.Open(cfg)
	if err != nil {
		return domain.ResolvedMetadata{}, err
	}
	defer func() { _ = sw.Close() }()

	m := rmodule.New(modkit.Deps{Cfg: cfg, Swarm: sw, Log: logger.Named("cli")})
	ports, _ := modkit.PortsOf[rmodule.Ports](m)

	log := logger.Named("cli")
	for _, p := range cfg.Problems() {
		log.Warn().Str("key", p.Key).Str("value", p.Value).Msg("ignored invalid setting")
	}
	return ports.Resolver.Resolve(ctx, magnet, 0)
}
