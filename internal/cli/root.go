package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/rileyhilliard/rcpu/internal/ui"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	ConfigFile string
	Verbose    bool
	NoColor    bool
}

var rootCmd = newRootCmd()

// newRootCmd builds the command tree. Tests build their own tree so flag
// state never leaks between cases.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "rcpu",
		Short: "Host CPU, memory and disk usage over HTTP",
		Long: `rcpu samples CPU, RAM and disk utilization of this machine.

Run 'rcpu serve' to expose the readings as JSON and Prometheus metrics, and
'rcpu dashboard' to watch a server's readings as live terminal gauges.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(opts.Verbose)
			if opts.NoColor {
				ui.DisableColors()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: search for "+config.ConfigFileName+")")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newServeCmd(opts),
		newDashboardCmd(opts),
		newSampleCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
		newCompletionCmd(),
	)
	return cmd
}

// loadConfig finds and loads the config, applies the configured color mode,
// and leaves validation to the caller so flag overrides are checked too.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Default().Debug("loaded config from %s", path)
	}
	if !opts.NoColor {
		ui.ApplyColorMode(cfg.Output.Color)
	}
	return cfg, nil
}

// colorMode is the effective color mode after --no-color.
func colorMode(opts *globalOptions, cfg *config.Config) string {
	if opts.NoColor {
		return ui.ColorModeNever
	}
	return cfg.Output.Color
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	os.Exit(run(rootCmd, os.Args[1:], os.Stderr))
}

// run executes cmd with args and returns the process exit code.
func run(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}
	printError(stderr, err)
	return 1
}

// printError renders err for humans. Structured errors already carry the
// ✗ message / cause / suggestion layout.
func printError(w io.Writer, err error) {
	if isUnknownCommandError(err) {
		name := extractUnknownCommand(err)
		msg := err.Error()
		if name != "" {
			msg = fmt.Sprintf("Unknown command %q", name)
		}
		fmt.Fprint(w, errors.New(errors.ErrConfig, msg, "Run 'rcpu --help' to see available commands").Error())
		return
	}
	if _, ok := err.(*errors.Error); ok {
		fmt.Fprint(w, ui.ErrorStyle().Render(err.Error()))
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), err.Error())
}

// isUnknownCommandError reports cobra's unknown command and flag errors.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls "foo" out of `unknown command "foo" for "rcpu"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
