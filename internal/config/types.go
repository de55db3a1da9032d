package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .rcpu.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures `rcpu serve`.
type ServerConfig struct {
	// Listen is the host:port the metrics server binds.
	Listen string `yaml:"listen" mapstructure:"listen"`

	// DiskPath is the filesystem reported by the disk routes.
	DiskPath string `yaml:"disk_path" mapstructure:"disk_path"`

	// Source selects the counter backend: auto, procfs or gopsutil.
	Source string `yaml:"source" mapstructure:"source"`

	// ShutdownTimeout bounds graceful shutdown after a signal.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DashboardConfig configures `rcpu dashboard`.
type DashboardConfig struct {
	// URL is the base address of the metrics server.
	URL string `yaml:"url" mapstructure:"url"`

	// Protocol is json or prometheus.
	Protocol string `yaml:"protocol" mapstructure:"protocol"`

	// FetchTimeout bounds each metric request. Must be below one second.
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`

	// BarWidth is the gauge width in characters.
	BarWidth int `yaml:"bar_width" mapstructure:"bar_width"`

	// LogFile receives diagnostics while the dashboard owns the terminal.
	// Empty discards them.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// OutputConfig controls terminal styling.
type OutputConfig struct {
	Color string `yaml:"color" mapstructure:"color"` // auto, always, never
}

// Defaults shared by DefaultConfig and the viper defaults.
const (
	DefaultListen          = "127.0.0.1:3000"
	DefaultDiskPath        = "/"
	DefaultSource          = "auto"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultURL             = "http://localhost:3000"
	DefaultProtocol        = "json"
	DefaultFetchTimeout    = 300 * time.Millisecond
	DefaultBarWidth        = 20
	DefaultColor           = "auto"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Server: ServerConfig{
			Listen:          DefaultListen,
			DiskPath:        DefaultDiskPath,
			Source:          DefaultSource,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Dashboard: DashboardConfig{
			URL:          DefaultURL,
			Protocol:     DefaultProtocol,
			FetchTimeout: DefaultFetchTimeout,
			BarWidth:     DefaultBarWidth,
		},
		Output: OutputConfig{
			Color: DefaultColor,
		},
	}
}
