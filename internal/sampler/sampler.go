// Package sampler derives 0-100 percentage metrics from raw host counters.
//
// CPU usage is a rate: two tick tables are read PollInterval apart and the
// busy share of the elapsed ticks is reported. Memory and disk usage are
// point-in-time ratios of a single reading. All arithmetic is unsigned integer
// division truncated toward zero, and every result is clamped to [0,100].
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
)

// PollInterval separates the two CPU snapshots.
const PollInterval = 100 * time.Millisecond

// Kind identifies a sampled metric.
type Kind int

const (
	KindCPU Kind = iota
	KindRAM
	KindDisk
)

// Kinds lists every metric in dashboard order.
var Kinds = []Kind{KindCPU, KindRAM, KindDisk}

// String returns the lowercase metric name used on the wire.
func (k Kind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindRAM:
		return "ram"
	case KindDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Reading is one derived percentage.
type Reading struct {
	Kind      Kind
	Percent   uint8
	Timestamp time.Time
}

// Capacity is filesystem usage in bytes.
type Capacity struct {
	Used  uint64
	Total uint64
}

// Sampler derives metrics from a counters.Source.
// It holds no mutable state and may be shared across goroutines.
type Sampler struct {
	source   counters.Source
	diskPath string
	interval time.Duration
	now      func() time.Time
}

// New creates a Sampler reading the filesystem that contains diskPath.
func New(source counters.Source, diskPath string) *Sampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Sampler{
		source:   source,
		diskPath: diskPath,
		interval: PollInterval,
		now:      time.Now,
	}
}

// DiskPath returns the path whose filesystem is sampled.
func (s *Sampler) DiskPath() string {
	return s.diskPath
}

// CPU takes two tick snapshots PollInterval apart and returns the busy share.
// Nothing is held across the wait; ctx cancellation aborts it.
func (s *Sampler) CPU(ctx context.Context) (uint8, error) {
	first, err := s.source.ReadCPU(ctx)
	if err != nil {
		return 0, err
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	second, err := s.source.ReadCPU(ctx)
	if err != nil {
		return 0, err
	}
	return CPUUsage(first, second), nil
}

// RAM returns the share of memory that is not available.
func (s *Sampler) RAM(ctx context.Context) (uint8, error) {
	m, err := s.source.ReadMemory(ctx)
	if err != nil {
		return 0, err
	}
	return MemoryBusy(m)
}

// Disk returns the used share of the sampled filesystem.
func (s *Sampler) Disk(ctx context.Context) (uint8, error) {
	d, err := s.source.ReadDisk(ctx, s.diskPath)
	if err != nil {
		return 0, err
	}
	return DiskUsed(d)
}

// DiskBytes returns used and total bytes of the sampled filesystem.
func (s *Sampler) DiskBytes(ctx context.Context) (Capacity, error) {
	d, err := s.source.ReadDisk(ctx, s.diskPath)
	if err != nil {
		return Capacity{}, err
	}
	return DiskCapacity(d)
}

// Sample derives the metric for kind and stamps it with the current time.
func (s *Sampler) Sample(ctx context.Context, kind Kind) (Reading, error) {
	var (
		pct uint8
		err error
	)
	switch kind {
	case KindCPU:
		pct, err = s.CPU(ctx)
	case KindRAM:
		pct, err = s.RAM(ctx)
	case KindDisk:
		pct, err = s.Disk(ctx)
	default:
		return Reading{}, errors.New(errors.ErrProtocol,
			fmt.Sprintf("Unknown metric kind %d", int(kind)), "")
	}
	if err != nil {
		return Reading{}, err
	}
	return Reading{Kind: kind, Percent: pct, Timestamp: s.now()}, nil
}
