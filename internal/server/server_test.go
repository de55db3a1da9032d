package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/rileyhilliard/rcpu/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMetrics returns fixed values or a fixed error.
type stubMetrics struct {
	cpu, ram, disk uint8
	capacity       sampler.Capacity
	err            error
}

func (s *stubMetrics) CPU(ctx context.Context) (uint8, error)  { return s.cpu, s.err }
func (s *stubMetrics) RAM(ctx context.Context) (uint8, error)  { return s.ram, s.err }
func (s *stubMetrics) Disk(ctx context.Context) (uint8, error) { return s.disk, s.err }
func (s *stubMetrics) DiskBytes(ctx context.Context) (sampler.Capacity, error) {
	return s.capacity, s.err
}

func healthyMetrics() *stubMetrics {
	return &stubMetrics{
		cpu:      42,
		ram:      75,
		disk:     75,
		capacity: sampler.Capacity{Used: 75_000_000_000, Total: 100_000_000_000},
	}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, strings.TrimSpace(rec.Body.String())
}

func TestHandler_SuccessPayloads(t *testing.T) {
	h := New(healthyMetrics()).Handler()

	tests := []struct {
		path string
		body string
	}{
		{"/cpu", `{"cpu":42}`},
		{"/ram", `{"ram":75}`},
		{"/disk/percentage", `{"percentage":75}`},
		{"/disk/bytes", `{"used":75000000000,"total":100000000000}`},
		{"/health", `{"status":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, h, tt.path)
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, tt.body, body)
		})
	}
}

func TestHandler_ContentType(t *testing.T) {
	h := New(healthyMetrics()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cpu", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandler_UnknownDiskVariantIsNotFound(t *testing.T) {
	log := logger.NewBufferLogger()
	h := New(healthyMetrics(), WithLogger(log)).Handler()

	code, body := get(t, h, "/disk/inodes")
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"not found"}`, body)
	assert.False(t, log.HasLevel("error"), "a bad query is not an internal failure")
}

func TestHandler_InternalErrorsHideDetail(t *testing.T) {
	codes := []string{errors.ErrIO, errors.ErrParse, errors.ErrDivision}

	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			log := logger.NewBufferLogger()
			m := &stubMetrics{err: errors.WrapWithCode(
				fmt.Errorf("open /proc/stat: permission denied"), code, "Cannot read /proc/stat", "")}
			h := New(m, WithLogger(log)).Handler()

			for _, path := range []string{"/cpu", "/ram", "/disk/percentage", "/disk/bytes"} {
				status, body := get(t, h, path)
				assert.Equal(t, http.StatusInternalServerError, status, path)
				assert.JSONEq(t, `{"error":"internal server error"}`, body)
				assert.NotContains(t, body, "permission denied")
			}
			assert.True(t, log.HasLevel("error"), "detail belongs in the log")
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.New(errors.ErrProtocol, "x", "")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New(errors.ErrIO, "x", "")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("plain")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(context.DeadlineExceeded))
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New(healthyMetrics()).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cpu", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_PrometheusMetrics(t *testing.T) {
	h := New(healthyMetrics()).Handler()

	// Count one request so the counter has a series.
	get(t, h, "/cpu")

	code, body := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, MetricCPUPercent+" 42")
	assert.Contains(t, body, MetricRAMPercent+" 75")
	assert.Contains(t, body, MetricDiskPercent+" 75")
	assert.Contains(t, body, MetricDiskUsed+" 7.5e+10")
	assert.Contains(t, body, MetricDiskTotal+" 1e+11")
	assert.Contains(t, body, `rcpu_http_requests_total{code="200",route="/cpu"} 1`)
}

func TestHandler_PrometheusOmitsFailedMetrics(t *testing.T) {
	log := logger.NewBufferLogger()
	m := &stubMetrics{err: errors.New(errors.ErrIO, "boom", "")}
	h := New(m, WithLogger(log)).Handler()

	code, body := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "\n"+MetricCPUPercent+" ")
	assert.True(t, log.HasLevel("error"))
}

func TestHandler_ConcurrentRequests(t *testing.T) {
	srv := httptest.NewServer(New(healthyMetrics()).Handler())
	defer srv.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(srv.URL + "/ram")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			var payload map[string]int
			assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.Equal(t, 75, payload["ram"])
		}()
	}
	wg.Wait()
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	log := logger.NewBufferLogger()
	s := New(healthyMetrics(), WithLogger(log), WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/cpu")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"cpu":42}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, log.HasLevel("info"))
}

func TestListenAndServe_BindFailureIsStartupError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = New(healthyMetrics()).ListenAndServe(context.Background(), ln.Addr().String())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStartup))
}
