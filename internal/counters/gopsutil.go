package counters

import (
	"context"
	"math"

	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// ticksPerSecond converts gopsutil's CPU seconds back to USER_HZ ticks.
const ticksPerSecond = 100

// PSSource reads counters through gopsutil, for hosts without procfs.
type PSSource struct{}

// NewPSSource creates a gopsutil-backed source.
func NewPSSource() *PSSource {
	return &PSSource{}
}

func (s *PSSource) ReadCPU(ctx context.Context) (CPUTicks, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTicks{}, errors.WrapWithCode(err, errors.ErrIO,
			"Cannot read CPU times", "")
	}
	if len(times) == 0 {
		return CPUTicks{}, errors.New(errors.ErrParse,
			"No aggregate CPU times reported", "")
	}
	return ticksFromTimes(times[0]), nil
}

func (s *PSSource) ReadMemory(ctx context.Context) (MemoryTotals, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryTotals{}, errors.WrapWithCode(err, errors.ErrIO,
			"Cannot read virtual memory stats", "")
	}
	return MemoryTotals{Available: vm.Available, Total: vm.Total}, nil
}

func (s *PSSource) ReadDisk(ctx context.Context, path string) (DiskBlocks, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskBlocks{}, errors.WrapWithCode(err, errors.ErrIO,
			"Cannot read disk usage for "+path,
			"Check that the disk path exists")
	}
	return DiskBlocks{Free: usage.Free, Total: usage.Total}, nil
}

// ticksFromTimes sums the same ten columns the procfs parser does.
func ticksFromTimes(t cpu.TimesStat) CPUTicks {
	idle := t.Idle + t.Iowait
	total := t.User + t.Nice + t.System + t.Idle + t.Iowait +
		t.Irq + t.Softirq + t.Steal + t.Guest + t.GuestNice
	return CPUTicks{
		Idle:  toTicks(idle),
		Total: toTicks(total),
	}
}

func toTicks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * ticksPerSecond))
}
