package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/rcpu/internal/client"
	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Config file to write; defaults to ./.rcpu.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

func newInitCmd(g *globalOptions) *cobra.Command {
	var force, nonInteractive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.ConfigFileName + " config file",
		Long: `Create a config file in the current directory, or at --config.

Prompts for the server and dashboard settings unless --non-interactive is set,
in which case the defaults are written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Init(InitOptions{
				Path:           g.ConfigFile,
				Overwrite:      force,
				NonInteractive: nonInteractive,
				Out:            cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "write defaults without prompting")
	return cmd
}

// Init creates a new .rcpu.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Write(configPath, cfg); err != nil {
		return err
	}

	ui.PrintSuccess(out, "Created "+configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  rcpu serve      - Start the metrics server")
	fmt.Fprintln(out, "  rcpu dashboard  - Watch live gauges")
	return nil
}

// promptConfig asks for the settings people usually change.
func promptConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("Where 'rcpu serve' binds").
				Placeholder(config.DefaultListen).
				Value(&cfg.Server.Listen).
				Validate(requireNonEmpty("listen address")),
			huh.NewInput().
				Title("Disk path").
				Description("Filesystem reported by /disk").
				Placeholder(config.DefaultDiskPath).
				Value(&cfg.Server.DiskPath).
				Validate(validateAbsPath),
			huh.NewSelect[string]().
				Title("Counter source").
				Options(
					huh.NewOption("auto (procfs on Linux)", counters.KindAuto),
					huh.NewOption("procfs", counters.KindProcfs),
					huh.NewOption("gopsutil", counters.KindGopsutil),
				).
				Value(&cfg.Server.Source),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dashboard server URL").
				Description("Base URL the dashboard polls").
				Placeholder(config.DefaultURL).
				Value(&cfg.Dashboard.URL).
				Validate(validateHTTPURL),
			huh.NewSelect[string]().
				Title("Dashboard protocol").
				Options(
					huh.NewOption("json", client.ProtocolJSON),
					huh.NewOption("prometheus", client.ProtocolPrometheus),
				).
				Value(&cfg.Dashboard.Protocol),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	return nil
}

func requireNonEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func validateAbsPath(s string) error {
	if !filepath.IsAbs(s) {
		return fmt.Errorf("path must be absolute")
	}
	return nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http:// or https:// URL")
	}
	return nil
}
