//go:build !linux

package counters

import (
	"runtime"

	"github.com/rileyhilliard/rcpu/internal/errors"
)

func statDisk(path string) (DiskBlocks, error) {
	return DiskBlocks{}, errors.New(errors.ErrIO,
		"procfs disk source is not supported on "+runtime.GOOS,
		"Use --source gopsutil")
}
