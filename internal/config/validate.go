package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/rcpu/internal/client"
	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/ui"
)

// MaxFetchTimeout is the exclusive upper bound for dashboard.fetch_timeout.
// A fetch must finish inside one dashboard tick.
const MaxFetchTimeout = time.Second

// MaxBarWidth caps dashboard.bar_width.
const MaxBarWidth = 200

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but rcpu only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade rcpu or lower the version in your config")
	}

	if err := validateServer(cfg.Server); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'server' section in your .rcpu.yaml.")
	}
	if err := validateDashboard(cfg.Dashboard); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dashboard' section in your .rcpu.yaml.")
	}
	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .rcpu.yaml.")
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Listen == "" {
		return fmt.Errorf("server.listen can't be empty")
	}
	if !filepath.IsAbs(s.DiskPath) {
		return fmt.Errorf("server.disk_path must be an absolute path, got %q", s.DiskPath)
	}
	switch s.Source {
	case counters.KindAuto, counters.KindProcfs, counters.KindGopsutil:
	default:
		return fmt.Errorf("server.source %q isn't recognized (use auto, procfs or gopsutil)", s.Source)
	}
	if s.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout can't be negative")
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	u, err := url.Parse(d.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("dashboard.url %q must be an http(s) URL with a host", d.URL)
	}
	switch d.Protocol {
	case client.ProtocolJSON, client.ProtocolPrometheus:
	default:
		return fmt.Errorf("dashboard.protocol %q isn't recognized (use json or prometheus)", d.Protocol)
	}
	if d.FetchTimeout <= 0 || d.FetchTimeout >= MaxFetchTimeout {
		return fmt.Errorf("dashboard.fetch_timeout must be between 0 and %s, got %s", MaxFetchTimeout, d.FetchTimeout)
	}
	if d.BarWidth < 1 || d.BarWidth > MaxBarWidth {
		return fmt.Errorf("dashboard.bar_width must be between 1 and %d, got %d", MaxBarWidth, d.BarWidth)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	if !ui.ValidColorMode(o.Color) {
		return fmt.Errorf("output.color %q isn't recognized (use auto, always or never)", o.Color)
	}
	return nil
}
