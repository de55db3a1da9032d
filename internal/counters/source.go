// Package counters reads raw host resource counters: CPU tick tables,
// memory totals, and filesystem block counts.
//
// Every read opens, reads, and closes its own OS resource and returns a fresh
// value, so a Source is safe to call from concurrent request handlers and
// consecutive reads always reflect live OS state.
package counters

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rileyhilliard/rcpu/internal/errors"
)

// CPUTicks is the aggregate CPU tick table at one instant.
// Idle includes iowait.
type CPUTicks struct {
	Idle  uint64
	Total uint64
}

// MemoryTotals holds memory counters in bytes.
type MemoryTotals struct {
	Available uint64
	Total     uint64
}

// DiskBlocks holds filesystem capacity in bytes.
type DiskBlocks struct {
	Free  uint64
	Total uint64
}

// Source reads raw counters from the operating system.
type Source interface {
	ReadCPU(ctx context.Context) (CPUTicks, error)
	ReadMemory(ctx context.Context) (MemoryTotals, error)
	ReadDisk(ctx context.Context, path string) (DiskBlocks, error)
}

// Source kinds accepted by NewSource.
const (
	KindAuto     = "auto"
	KindProcfs   = "procfs"
	KindGopsutil = "gopsutil"
)

// NewSource returns the Source for kind. "auto" picks procfs on Linux and
// gopsutil everywhere else.
func NewSource(kind string) (Source, error) {
	switch kind {
	case KindAuto, "":
		if runtime.GOOS == "linux" {
			return NewProcSource(""), nil
		}
		return NewPSSource(), nil
	case KindProcfs:
		return NewProcSource(""), nil
	case KindGopsutil:
		return NewPSSource(), nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown counter source %q", kind),
			"Use one of: auto, procfs, gopsutil")
	}
}
