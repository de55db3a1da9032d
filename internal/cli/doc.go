// Package cli implements the rcpu command-line interface.
//
// Each command is a cobra.Command built by a newXxxCmd constructor and wired
// into the tree by newRootCmd:
//
//	rcpu serve       - HTTP metrics server (JSON routes and /metrics)
//	rcpu dashboard   - full-screen gauges fed by a metrics server
//	rcpu sample      - one local reading of every metric
//	rcpu init        - write .rcpu.yaml
//	rcpu version     - build information
//	rcpu completion  - shell completion scripts
//
// # Configuration
//
// Commands load config through loadConfig, which searches for .rcpu.yaml and
// applies RCPU_* environment overrides. Flags a user sets explicitly win over
// both and the merged result is validated before anything starts.
//
// # Errors
//
// RunE functions return structured errors from internal/errors. Execute prints
// them and exits 1. An ExitError carries a specific exit code without extra
// output, which --json modes use after writing their own error envelope.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) are persistent flags on the
// root command.
package cli
