package counters

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rcpu/internal/errors"
)

// cpuColumns is how many tick columns of the aggregate cpu line are summed:
// user nice system idle iowait irq softirq steal guest guest_nice.
const cpuColumns = 10

// ProcSource reads counters from procfs and statfs(2).
type ProcSource struct {
	// Root is prepended to /proc paths. Empty means the real filesystem.
	Root string
}

// NewProcSource creates a procfs source rooted at root ("" for "/").
func NewProcSource(root string) *ProcSource {
	return &ProcSource{Root: root}
}

func (s *ProcSource) path(rel string) string {
	if s.Root == "" {
		return "/" + rel
	}
	return filepath.Join(s.Root, rel)
}

// ReadCPU reads the aggregate cpu line of /proc/stat.
func (s *ProcSource) ReadCPU(ctx context.Context) (CPUTicks, error) {
	if err := ctx.Err(); err != nil {
		return CPUTicks{}, err
	}
	data, err := readCounterFile(s.path("proc/stat"))
	if err != nil {
		return CPUTicks{}, err
	}
	return ParseCPUTicks(data)
}

// ReadMemory reads MemTotal and MemAvailable from /proc/meminfo.
func (s *ProcSource) ReadMemory(ctx context.Context) (MemoryTotals, error) {
	if err := ctx.Err(); err != nil {
		return MemoryTotals{}, err
	}
	data, err := readCounterFile(s.path("proc/meminfo"))
	if err != nil {
		return MemoryTotals{}, err
	}
	return ParseMemoryTotals(data)
}

// ReadDisk reports capacity of the filesystem containing path.
func (s *ProcSource) ReadDisk(ctx context.Context, path string) (DiskBlocks, error) {
	if err := ctx.Err(); err != nil {
		return DiskBlocks{}, err
	}
	return statDisk(path)
}

func readCounterFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		suggestion := "Check that procfs is mounted and readable"
		if os.IsPermission(err) {
			suggestion = "Run rcpu as a user allowed to read " + path
		}
		return "", errors.WrapWithCode(err, errors.ErrIO,
			"Cannot read "+path, suggestion)
	}
	return string(data), nil
}

// ParseCPUTicks parses the aggregate "cpu " line of /proc/stat.
// Total is the sum of the first ten tick columns; Idle is idle + iowait.
func ParseCPUTicks(procStat string) (CPUTicks, error) {
	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "cpu" {
			continue
		}

		values := fields[1:]
		if len(values) > cpuColumns {
			values = values[:cpuColumns]
		}
		// idle is column 4 and iowait column 5
		if len(values) < 5 {
			return CPUTicks{}, errors.New(errors.ErrParse,
				fmt.Sprintf("Invalid /proc/stat cpu line: %d columns, need at least 5", len(values)),
				"")
		}

		var ticks CPUTicks
		for i, raw := range values {
			val, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return CPUTicks{}, errors.WrapWithCode(err, errors.ErrParse,
					fmt.Sprintf("Invalid /proc/stat cpu column %d", i+1), "")
			}
			ticks.Total += val
			if i == 3 || i == 4 {
				ticks.Idle += val
			}
		}
		return ticks, nil
	}

	if err := scanner.Err(); err != nil {
		return CPUTicks{}, errors.WrapWithCode(err, errors.ErrParse,
			"Error scanning /proc/stat", "")
	}
	return CPUTicks{}, errors.New(errors.ErrParse,
		"No aggregate cpu line in /proc/stat", "")
}

// ParseMemoryTotals parses MemTotal and MemAvailable (kB) from /proc/meminfo.
func ParseMemoryTotals(procMeminfo string) (MemoryTotals, error) {
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))

	var totals MemoryTotals
	var haveTotal, haveAvailable bool

	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		key := strings.TrimSuffix(parts[0], ":")
		if key != "MemTotal" && key != "MemAvailable" {
			continue
		}
		if len(parts) < 2 {
			return MemoryTotals{}, errors.New(errors.ErrParse,
				fmt.Sprintf("Missing value for %s in /proc/meminfo", key), "")
		}
		kb, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return MemoryTotals{}, errors.WrapWithCode(err, errors.ErrParse,
				fmt.Sprintf("Invalid %s value in /proc/meminfo", key), "")
		}

		switch key {
		case "MemTotal":
			totals.Total = kb * 1024
			haveTotal = true
		case "MemAvailable":
			totals.Available = kb * 1024
			haveAvailable = true
		}
	}

	if err := scanner.Err(); err != nil {
		return MemoryTotals{}, errors.WrapWithCode(err, errors.ErrParse,
			"Error scanning /proc/meminfo", "")
	}
	if !haveTotal || !haveAvailable {
		return MemoryTotals{}, errors.New(errors.ErrParse,
			"MemTotal or MemAvailable missing from /proc/meminfo",
			"MemAvailable requires Linux 3.14 or newer")
	}

	return totals, nil
}
