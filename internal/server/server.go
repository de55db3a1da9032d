// Package server exposes sampled host metrics over HTTP.
//
// Each percentage query is a GET returning a small JSON object:
//
//	GET /cpu              {"cpu": 42}
//	GET /ram              {"ram": 75}
//	GET /disk/percentage  {"percentage": 75}
//	GET /disk/bytes       {"used": 75000000000, "total": 100000000000}
//
// Every request samples live counters; nothing is cached between requests.
// Internal failures collapse to a generic 500 body with the detail kept in the
// server log. /metrics serves the same values in Prometheus text format.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/logger"
	"github.com/rileyhilliard/rcpu/internal/sampler"
)

// Disk query variants under /disk/.
const (
	DiskPercentage = "percentage"
	DiskBytes      = "bytes"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 5 * time.Second

// Metrics is the sampling contract the server depends on.
// *sampler.Sampler satisfies it.
type Metrics interface {
	CPU(ctx context.Context) (uint8, error)
	RAM(ctx context.Context) (uint8, error)
	Disk(ctx context.Context) (uint8, error)
	DiskBytes(ctx context.Context) (sampler.Capacity, error)
}

// Server serves metric queries.
type Server struct {
	metrics         Metrics
	log             logger.Logger
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithShutdownTimeout bounds how long Serve waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a Server backed by m.
func New(m Metrics, opts ...Option) *Server {
	s := &Server{
		metrics:         m,
		log:             logger.Noop(),
		registry:        prometheus.NewRegistry(),
		shutdownTimeout: DefaultShutdownTimeout,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Metric queries served, by route and status code.",
		}, []string{"route", "code"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.requests, newHostCollector(m, s.log))
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /cpu", "/cpu", s.handleCPU)
	s.route(mux, "GET /ram", "/ram", s.handleRAM)
	s.route(mux, "GET /disk/{variant}", "/disk", s.handleDisk)
	s.route(mux, "GET /health", "/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe binds addr and serves until ctx is cancelled.
// A bind failure is a startup error.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Cannot listen on "+addr,
			"Stop whatever is using the port or pick a different --listen address")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("serving metrics on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.WrapWithCode(err, errors.ErrStartup, "Metric server stopped", "")
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("graceful shutdown incomplete: %v", err)
		return srv.Close()
	}
	return nil
}

// route registers h under pattern, counting and logging each request under label.
func (s *Server) route(mux *http.ServeMux, pattern, label string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.requests.WithLabelValues(label, strconv.Itoa(rec.status)).Inc()
		s.log.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
