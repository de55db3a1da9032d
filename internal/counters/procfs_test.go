package counters

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProc creates a fake /proc tree under a temp dir.
func writeProc(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proc"), 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, "proc", name), []byte(content), 0o644))
	}
	return root
}

func TestParseCPUTicks(t *testing.T) {
	tests := []struct {
		name     string
		procStat string
		want     CPUTicks
		wantCode string
	}{
		{
			name: "full ten column line",
			procStat: `cpu  1234567 12345 234567 8901234 12345 0 6789 0 0 0
cpu0 617283 6172 117283 4450617 6172 0 3394 0 0 0
intr 12345`,
			// 1234567+12345+234567+8901234+12345+0+6789 = 10401847
			want: CPUTicks{Idle: 8901234 + 12345, Total: 10401847},
		},
		{
			name:     "only five columns",
			procStat: "cpu  10 20 30 40 50\n",
			want:     CPUTicks{Idle: 90, Total: 150},
		},
		{
			name:     "extra columns beyond ten are ignored",
			procStat: "cpu  1 1 1 1 1 1 1 1 1 1 1000\n",
			want:     CPUTicks{Idle: 2, Total: 10},
		},
		{
			name:     "aggregate line found after per-core lines",
			procStat: "cpu0 1 2 3 4 5\ncpu  10 0 0 90 0\n",
			want:     CPUTicks{Idle: 90, Total: 100},
		},
		{
			name:     "too few columns",
			procStat: "cpu  1 2 3 4\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "non numeric column",
			procStat: "cpu  invalid data here now ok\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "no cpu line",
			procStat: "intr 1 2 3\nctxt 99\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "empty input",
			procStat: "",
			wantCode: errors.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCPUTicks(tt.procStat)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMemoryTotals(t *testing.T) {
	tests := []struct {
		name     string
		meminfo  string
		want     MemoryTotals
		wantCode string
	}{
		{
			name: "typical meminfo",
			meminfo: `MemTotal:        8000000 kB
MemFree:          500000 kB
MemAvailable:    2000000 kB
Buffers:          100000 kB
Cached:          1500000 kB`,
			want: MemoryTotals{Available: 2000000 * 1024, Total: 8000000 * 1024},
		},
		{
			name:     "zero total is returned as-is",
			meminfo:  "MemTotal: 0 kB\nMemAvailable: 0 kB\n",
			want:     MemoryTotals{},
		},
		{
			name:     "missing MemAvailable",
			meminfo:  "MemTotal: 8000000 kB\nMemFree: 1 kB\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "missing MemTotal",
			meminfo:  "MemAvailable: 8000000 kB\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "malformed value",
			meminfo:  "MemTotal: lots kB\nMemAvailable: 1 kB\n",
			wantCode: errors.ErrParse,
		},
		{
			name:     "key without value",
			meminfo:  "MemTotal:\nMemAvailable: 1 kB\n",
			wantCode: errors.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemoryTotals(tt.meminfo)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcSource_ReadsFixtureTree(t *testing.T) {
	root := writeProc(t, map[string]string{
		"stat":    "cpu  100 0 0 900 0 0 0 0 0 0\n",
		"meminfo": "MemTotal: 4 kB\nMemAvailable: 1 kB\n",
	})
	src := NewProcSource(root)
	ctx := context.Background()

	cpu, err := src.ReadCPU(ctx)
	require.NoError(t, err)
	assert.Equal(t, CPUTicks{Idle: 900, Total: 1000}, cpu)

	mem, err := src.ReadMemory(ctx)
	require.NoError(t, err)
	assert.Equal(t, MemoryTotals{Available: 1024, Total: 4096}, mem)
}

func TestProcSource_ReadsLiveState(t *testing.T) {
	root := writeProc(t, map[string]string{
		"stat": "cpu  100 0 0 900 0\n",
	})
	src := NewProcSource(root)

	first, err := src.ReadCPU(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "proc", "stat"), []byte("cpu  200 0 0 1000 0\n"), 0o644))
	second, err := src.ReadCPU(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "reads must not be cached")
}

func TestProcSource_MissingFileIsIOError(t *testing.T) {
	src := NewProcSource(t.TempDir())

	_, err := src.ReadCPU(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrIO))

	_, err = src.ReadMemory(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
}

func TestProcSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcSource("").ReadCPU(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcSource_ConcurrentReads(t *testing.T) {
	root := writeProc(t, map[string]string{
		"stat":    "cpu  100 0 0 900 0\n",
		"meminfo": "MemTotal: 4 kB\nMemAvailable: 1 kB\n",
	})
	src := NewProcSource(root)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.ReadCPU(context.Background())
			assert.NoError(t, err)
			_, err = src.ReadMemory(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestProcSource_ReadDisk(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("statfs source is linux only")
	}
	src := NewProcSource("")

	d, err := src.ReadDisk(context.Background(), "/")
	require.NoError(t, err)
	assert.Greater(t, d.Total, uint64(0))
	assert.LessOrEqual(t, d.Free, d.Total)

	_, err = src.ReadDisk(context.Background(), "/definitely/not/a/real/path")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrIO))
}
