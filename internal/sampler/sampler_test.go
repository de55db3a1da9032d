package sampler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/rcpu/internal/counters"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns queued CPU snapshots and fixed memory/disk values.
type fakeSource struct {
	mu       sync.Mutex
	cpu      []counters.CPUTicks
	cpuCalls int
	mem      counters.MemoryTotals
	disk     counters.DiskBlocks
	diskPath string
	err      error
}

func (f *fakeSource) ReadCPU(ctx context.Context) (counters.CPUTicks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return counters.CPUTicks{}, f.err
	}
	t := f.cpu[f.cpuCalls%len(f.cpu)]
	f.cpuCalls++
	return t, nil
}

func (f *fakeSource) ReadMemory(ctx context.Context) (counters.MemoryTotals, error) {
	return f.mem, f.err
}

func (f *fakeSource) ReadDisk(ctx context.Context, path string) (counters.DiskBlocks, error) {
	f.mu.Lock()
	f.diskPath = path
	f.mu.Unlock()
	return f.disk, f.err
}

func newTestSampler(src counters.Source) *Sampler {
	s := New(src, "/data")
	s.interval = time.Millisecond
	return s
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "cpu", KindCPU.String())
	assert.Equal(t, "ram", KindRAM.String())
	assert.Equal(t, "disk", KindDisk.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, []Kind{KindCPU, KindRAM, KindDisk}, Kinds)
}

func TestSampler_CPU(t *testing.T) {
	src := &fakeSource{cpu: []counters.CPUTicks{
		{Idle: 100, Total: 1000},
		{Idle: 150, Total: 1200},
	}}
	s := newTestSampler(src)

	got, err := s.CPU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(75), got)
	assert.Equal(t, 2, src.cpuCalls, "CPU takes exactly two snapshots")
}

func TestSampler_CPUWaitsPollInterval(t *testing.T) {
	src := &fakeSource{cpu: []counters.CPUTicks{{Idle: 1, Total: 2}}}
	s := New(src, "")
	assert.Equal(t, PollInterval, s.interval)
	assert.Equal(t, "/", s.DiskPath())

	start := time.Now()
	_, err := s.CPU(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), PollInterval)
}

func TestSampler_CPUCancelledDuringWait(t *testing.T) {
	src := &fakeSource{cpu: []counters.CPUTicks{{Idle: 1, Total: 2}}}
	s := New(src, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := s.CPU(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, src.cpuCalls)
}

func TestSampler_ConcurrentCPU(t *testing.T) {
	src := &fakeSource{cpu: []counters.CPUTicks{{Idle: 0, Total: 0}, {Idle: 0, Total: 100}}}
	s := newTestSampler(src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.CPU(context.Background())
			assert.NoError(t, err)
			assert.LessOrEqual(t, got, uint8(100))
		}()
	}
	wg.Wait()
}

func TestSampler_RAMAndDisk(t *testing.T) {
	src := &fakeSource{
		mem:  counters.MemoryTotals{Available: 2_000_000, Total: 8_000_000},
		disk: counters.DiskBlocks{Free: 25_000_000_000, Total: 100_000_000_000},
	}
	s := newTestSampler(src)
	ctx := context.Background()

	ram, err := s.RAM(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(75), ram)

	disk, err := s.Disk(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(75), disk)
	assert.Equal(t, "/data", src.diskPath)

	capacity, err := s.DiskBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, Capacity{Used: 75_000_000_000, Total: 100_000_000_000}, capacity)
}

func TestSampler_SourceErrorsPropagate(t *testing.T) {
	src := &fakeSource{err: errors.New(errors.ErrIO, "Cannot read /proc/stat", "")}
	s := newTestSampler(src)
	ctx := context.Background()

	_, err := s.CPU(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
	_, err = s.RAM(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
	_, err = s.Disk(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
	_, err = s.DiskBytes(ctx)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
}

func TestSampler_Sample(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	src := &fakeSource{
		cpu:  []counters.CPUTicks{{Idle: 100, Total: 1000}, {Idle: 150, Total: 1200}},
		mem:  counters.MemoryTotals{Available: 1, Total: 4},
		disk: counters.DiskBlocks{},
	}
	s := newTestSampler(src)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	r, err := s.Sample(ctx, KindCPU)
	require.NoError(t, err)
	assert.Equal(t, Reading{Kind: KindCPU, Percent: 75, Timestamp: fixed}, r)

	r, err = s.Sample(ctx, KindRAM)
	require.NoError(t, err)
	assert.Equal(t, uint8(75), r.Percent)

	_, err = s.Sample(ctx, KindDisk)
	assert.True(t, errors.IsCode(err, errors.ErrDivision), "zero disk total must be reported")

	_, err = s.Sample(ctx, Kind(9))
	assert.True(t, errors.IsCode(err, errors.ErrProtocol))
}
