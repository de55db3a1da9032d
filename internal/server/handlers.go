package server

import (
	"fmt"
	"net/http"

	"github.com/rileyhilliard/rcpu/internal/errors"
)

type cpuResponse struct {
	CPU uint8 `json:"cpu"`
}

type ramResponse struct {
	RAM uint8 `json:"ram"`
}

type diskPercentResponse struct {
	Percentage uint8 `json:"percentage"`
}

type diskBytesResponse struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusByCode maps an error code to its HTTP status. Codes not listed are
// internal failures.
var statusByCode = map[string]int{
	errors.ErrProtocol: http.StatusNotFound,
}

// bodyByStatus is the only error text that crosses the boundary.
var bodyByStatus = map[int]string{
	http.StatusNotFound:            "not found",
	http.StatusInternalServerError: "internal server error",
}

// StatusFor returns the HTTP status used to report err.
func StatusFor(err error) int {
	if status, ok := statusByCode[errors.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.log.Debug("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: bodyByStatus[status]})
}

func (s *Server) handleCPU(w http.ResponseWriter, r *http.Request) {
	pct, err := s.metrics.CPU(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cpuResponse{CPU: pct})
}

func (s *Server) handleRAM(w http.ResponseWriter, r *http.Request) {
	pct, err := s.metrics.RAM(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ramResponse{RAM: pct})
}

func (s *Server) handleDisk(w http.ResponseWriter, r *http.Request) {
	switch variant := r.PathValue("variant"); variant {
	case DiskPercentage:
		pct, err := s.metrics.Disk(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, diskPercentResponse{Percentage: pct})

	case DiskBytes:
		c, err := s.metrics.DiskBytes(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, diskBytesResponse{Used: c.Used, Total: c.Total})

	default:
		s.fail(w, r, errors.New(errors.ErrProtocol,
			fmt.Sprintf("Unknown disk query %q", variant),
			"Use /disk/percentage or /disk/bytes"))
	}
}
