package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/sampler"
	"github.com/rileyhilliard/rcpu/internal/ui"
	"github.com/spf13/cobra"
)

type sampleFlags struct {
	JSON     bool
	DiskPath string
	Source   string
}

// SampleResult is the `rcpu sample --json` payload.
type SampleResult struct {
	CPU       uint8     `json:"cpu"`
	RAM       uint8     `json:"ram"`
	Disk      uint8     `json:"disk"`
	DiskUsed  uint64    `json:"disk_used"`
	DiskTotal uint64    `json:"disk_total"`
	DiskPath  string    `json:"disk_path"`
	Timestamp time.Time `json:"timestamp"`
}

func newSampleCmd(g *globalOptions) *cobra.Command {
	flags := &sampleFlags{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print one reading of every metric",
		Long: `Sample this machine once without starting a server.

Examples:
  rcpu sample
  rcpu sample --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("disk-path") {
				cfg.Server.DiskPath = flags.DiskPath
			}
			if cmd.Flags().Changed("source") {
				cfg.Server.Source = flags.Source
			}
			if err := config.Validate(cfg); err != nil {
				return writeSampleError(cmd.OutOrStdout(), flags.JSON, err)
			}

			source, err := counters.NewSource(cfg.Server.Source)
			if err != nil {
				return writeSampleError(cmd.OutOrStdout(), flags.JSON, err)
			}
			res, err := takeSample(cmd.Context(), sampler.New(source, cfg.Server.DiskPath))
			if err != nil {
				return writeSampleError(cmd.OutOrStdout(), flags.JSON, err)
			}

			if flags.JSON {
				return WriteJSONSuccess(cmd.OutOrStdout(), res)
			}
			printSample(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.JSON, "json", false, "print a JSON envelope")
	cmd.Flags().StringVar(&flags.DiskPath, "disk-path", "", "filesystem to sample")
	cmd.Flags().StringVar(&flags.Source, "source", "", "counter source: auto, procfs or gopsutil")
	return cmd
}

// takeSample reads every metric once. The first failure aborts.
func takeSample(ctx context.Context, s *sampler.Sampler) (*SampleResult, error) {
	cpu, err := s.CPU(ctx)
	if err != nil {
		return nil, err
	}
	ram, err := s.RAM(ctx)
	if err != nil {
		return nil, err
	}
	disk, err := s.Disk(ctx)
	if err != nil {
		return nil, err
	}
	capacity, err := s.DiskBytes(ctx)
	if err != nil {
		return nil, err
	}
	return &SampleResult{
		CPU:       cpu,
		RAM:       ram,
		Disk:      disk,
		DiskUsed:  capacity.Used,
		DiskTotal: capacity.Total,
		DiskPath:  s.DiskPath(),
		Timestamp: time.Now().UTC(),
	}, nil
}

func printSample(w io.Writer, r *SampleResult) {
	ui.PrintKeyValue(w, "cpu", fmt.Sprintf("%d%%", r.CPU))
	ui.PrintKeyValue(w, "ram", fmt.Sprintf("%d%%", r.RAM))
	ui.PrintKeyValue(w, "disk", fmt.Sprintf("%d%% (%s of %s on %s)",
		r.Disk, formatBytes(r.DiskUsed), formatBytes(r.DiskTotal), r.DiskPath))
}

// writeSampleError reports err as a JSON envelope in --json mode and returns
// an exit error so nothing is printed twice.
func writeSampleError(w io.Writer, asJSON bool, err error) error {
	if !asJSON {
		return err
	}
	if werr := WriteJSONFromError(w, err); werr != nil {
		return werr
	}
	return errors.NewExitError(1)
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
