package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/rileyhilliard/rcpu/internal/sampler"
	"github.com/rileyhilliard/rcpu/internal/server"
	"github.com/rileyhilliard/rcpu/internal/ui"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	Listen   string
	DiskPath string
	Source   string
}

func newServeCmd(g *globalOptions) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve CPU, RAM and disk usage over HTTP",
		Long: `Start the metrics server.

Routes:
  GET /cpu              {"cpu": 0-100}
  GET /ram              {"ram": 0-100}
  GET /disk/percentage  {"percentage": 0-100}
  GET /disk/bytes       {"used": bytes, "total": bytes}
  GET /health           {"status": "ok"}
  GET /metrics          Prometheus exposition

Examples:
  rcpu serve
  rcpu serve --listen 0.0.0.0:9100 --disk-path /data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, flags, &cfg.Server)
			if err := config.Validate(cfg); err != nil {
				return err
			}

			if exposesAllInterfaces(cfg.Server.Listen) {
				ui.PrintWarning("Listening on all interfaces; the metric routes have no authentication")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg.Server, logger.NewWriterLogger(cmd.ErrOrStderr(), "[serve]"))
		},
	}

	cmd.Flags().StringVar(&flags.Listen, "listen", "", "address to bind (default from config: "+config.DefaultListen+")")
	cmd.Flags().StringVar(&flags.DiskPath, "disk-path", "", "filesystem to report on the disk routes")
	cmd.Flags().StringVar(&flags.Source, "source", "", "counter source: auto, procfs or gopsutil")
	return cmd
}

// applyServeFlags overrides config values with flags the user set.
func applyServeFlags(cmd *cobra.Command, flags *serveFlags, s *config.ServerConfig) {
	if cmd.Flags().Changed("listen") {
		s.Listen = flags.Listen
	}
	if cmd.Flags().Changed("disk-path") {
		s.DiskPath = flags.DiskPath
	}
	if cmd.Flags().Changed("source") {
		s.Source = flags.Source
	}
}

// runServe wires source, sampler and server, then serves until ctx ends.
func runServe(ctx context.Context, sc config.ServerConfig, log logger.Logger) error {
	source, err := counters.NewSource(sc.Source)
	if err != nil {
		return err
	}
	log.Debug("counter source %s, disk path %s", sc.Source, sc.DiskPath)

	srv := server.New(sampler.New(source, sc.DiskPath),
		server.WithLogger(log),
		server.WithShutdownTimeout(sc.ShutdownTimeout),
	)
	return srv.ListenAndServe(ctx, sc.Listen)
}

// exposesAllInterfaces reports whether listen binds the wildcard address.
func exposesAllInterfaces(listen string) bool {
	host, _, err := net.SplitHostPort(listen)
	if err != nil {
		return false
	}
	return host == "" || host == "0.0.0.0" || host == "::"
}
