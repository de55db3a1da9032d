package sampler

import (
	"math/bits"

	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
)

// CPUUsage returns the busy percentage between two tick snapshots.
//
// Counters that went backwards (wrap or reset) yield a zero diff, idle above
// total reads as fully idle, and a zero total diff means nothing advanced: 0%.
func CPUUsage(a, b counters.CPUTicks) uint8 {
	idle := subSat(b.Idle, a.Idle)
	total := subSat(b.Total, a.Total)
	if total == 0 {
		return 0
	}
	return remainingPercent(idle, total)
}

// MemoryBusy returns 100 - available*100/total.
// A zero total means the kernel data is malformed and is reported as an error.
func MemoryBusy(m counters.MemoryTotals) (uint8, error) {
	if m.Total == 0 {
		return 0, errors.New(errors.ErrDivision,
			"RAM info reports zero total memory",
			"MemTotal in /proc/meminfo should never be 0")
	}
	return remainingPercent(m.Available, m.Total), nil
}

// DiskUsed returns 100 - free*100/total. A filesystem with zero total
// capacity has no meaningful usage and is reported as an error.
func DiskUsed(d counters.DiskBlocks) (uint8, error) {
	if d.Total == 0 {
		return 0, errors.New(errors.ErrDivision,
			"Disk reports zero total capacity",
			"Point --disk-path at a real filesystem")
	}
	return remainingPercent(d.Free, d.Total), nil
}

// DiskCapacity returns used = total - free alongside total.
func DiskCapacity(d counters.DiskBlocks) (Capacity, error) {
	if d.Total == 0 {
		return Capacity{}, errors.New(errors.ErrDivision,
			"Disk reports zero total capacity",
			"Point --disk-path at a real filesystem")
	}
	return Capacity{Used: subSat(d.Total, d.Free), Total: d.Total}, nil
}

// remainingPercent computes 100 - part*100/total clamped to [0,100].
// total must be non-zero. The 128-bit multiply keeps byte counts of any size
// exact.
func remainingPercent(part, total uint64) uint8 {
	if part >= total {
		return 0
	}
	hi, lo := bits.Mul64(part, 100)
	share, _ := bits.Div64(hi, lo, total)
	return uint8(100 - share)
}

func subSat(b, a uint64) uint64 {
	if b < a {
		return 0
	}
	return b - a
}
