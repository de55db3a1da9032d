package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/rcpu/internal/client"
	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/dashboard"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/spf13/cobra"
)

type dashboardFlags struct {
	URL          string
	Protocol     string
	FetchTimeout time.Duration
	Width        int
}

func newDashboardCmd(g *globalOptions) *cobra.Command {
	flags := &dashboardFlags{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show live CPU, RAM and disk gauges from a metrics server",
		Long: `Take over the terminal and redraw three usage gauges once per second.

Values come from a running 'rcpu serve'. A metric that can't be fetched in
time shows as 0%. Press 'q' or Ctrl+C to exit.

Examples:
  rcpu dashboard
  rcpu dashboard --url http://box:3000 --protocol prometheus`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			applyDashboardFlags(cmd, flags, &cfg.Dashboard)
			if err := config.Validate(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			term := dashboard.NewANSITerminal(os.Stdin, os.Stdout)
			return runDashboard(ctx, term, cfg.Dashboard, colorMode(g, cfg))
		},
	}

	cmd.Flags().StringVar(&flags.URL, "url", "", "metrics server base URL (default from config: "+config.DefaultURL+")")
	cmd.Flags().StringVar(&flags.Protocol, "protocol", "", "wire protocol: json or prometheus")
	cmd.Flags().DurationVar(&flags.FetchTimeout, "fetch-timeout", 0, "timeout per metric request, below 1s")
	cmd.Flags().IntVar(&flags.Width, "width", 0, "gauge width in characters")
	return cmd
}

func applyDashboardFlags(cmd *cobra.Command, flags *dashboardFlags, d *config.DashboardConfig) {
	if cmd.Flags().Changed("url") {
		d.URL = flags.URL
	}
	if cmd.Flags().Changed("protocol") {
		d.Protocol = flags.Protocol
	}
	if cmd.Flags().Changed("fetch-timeout") {
		d.FetchTimeout = flags.FetchTimeout
	}
	if cmd.Flags().Changed("width") {
		d.BarWidth = flags.Width
	}
}

// runDashboard builds the fetcher and runs the poll loop on term.
func runDashboard(ctx context.Context, term dashboard.Terminal, dc config.DashboardConfig, color string) error {
	log, closeLog, err := dashboardLogger(dc.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	hc := &http.Client{Timeout: dc.FetchTimeout}
	fetcher, err := client.New(dc.URL, dc.Protocol, hc)
	if err != nil {
		return err
	}

	loop := dashboard.NewLoop(term, fetcher,
		dashboard.WithWidth(dc.BarWidth),
		dashboard.WithFetchTimeout(dc.FetchTimeout),
		dashboard.WithStyles(dashboard.NewStyles(os.Stdout, color)),
		dashboard.WithLogger(log),
	)
	log.Info("dashboard polling %s (%s)", dc.URL, dc.Protocol)
	return loop.Run(ctx)
}

// dashboardLogger keeps log output off the terminal the loop owns: it writes
// to path when set and nowhere otherwise.
func dashboardLogger(path string) (logger.Logger, func(), error) {
	if path == "" {
		return logger.Noop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrStartup,
			"Cannot open dashboard log file "+path,
			"Check the dashboard.log_file path or leave it empty")
	}
	return logger.NewWriterLogger(f, "[dashboard]"), func() { _ = f.Close() }, nil
}
