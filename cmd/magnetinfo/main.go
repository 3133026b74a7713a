// Command magnetinfo resolves a magnet link from the terminal
package main

import (
	"errors"
	"fmt"
	"os"

	"magnetinfo/internal/core/version"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "magnetinfo",
		Short:         "Fetch torrent metadata for magnet links",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			initLogger(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log swarm activity to stderr")
	root.AddCommand(resolveCmd(), versionCmd())
	return root
}

// initLogger keeps stdout clean for results, logs go to stderr at warn unless asked
func initLogger(verbose bool) {
	cfg := config.New()
	opt := logger.FromConfig(cfg)
	opt.Level = cfg.MayString("LOG_LEVEL", "warn")
	opt.Writer = os.Stderr
	opt.Component = "cli"
	if verbose {
		opt.Level = "debug"
	}
	logger.Init(opt)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "magnetinfo %s\n", version.Info())
		},
	}
}

// exitCode maps a resolution failure onto a process status
func exitCode(err error) int {
	var re *domain.ResolutionError
	if !errors.As(err, &re) {
		return 1
	}
	switch re.Kind {
	case domain.KindInvalidIdentifier:
		return 2
	case domain.KindSwarmError:
		return 3
	case domain.KindTimeout:
		return 4
	case domain.KindCanceled:
		return 130
	default:
		return 1
	}
}
