// Package client fetches metric percentages from an rcpu server.
//
// Two protocols are supported: the JSON query endpoints and the Prometheus
// text exposition on /metrics. Both bound every fetch with the caller's
// context, so a hung server surfaces as an error instead of a stall.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/common/expfmt"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/rileyhilliard/rcpu/internal/sampler"
	"github.com/rileyhilliard/rcpu/internal/server"
)

// Protocols accepted by New.
const (
	ProtocolJSON       = "json"
	ProtocolPrometheus = "prometheus"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Fetcher retrieves one metric percentage.
type Fetcher interface {
	Fetch(ctx context.Context, kind sampler.Kind) (uint8, error)
}

// New returns the fetcher for protocol against baseURL.
func New(baseURL, protocol string, hc *http.Client) (Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid server URL %q", baseURL),
			"Use a full URL like http://localhost:3000")
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	base := strings.TrimRight(u.String(), "/")

	switch protocol {
	case ProtocolJSON, "":
		return &JSONFetcher{base: base, http: hc}, nil
	case ProtocolPrometheus:
		return &PrometheusFetcher{base: base, http: hc}, nil
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown protocol %q", protocol),
			"Use json or prometheus")
	}
}

// JSONFetcher queries /cpu, /ram and /disk/percentage.
type JSONFetcher struct {
	base string
	http *http.Client
}

// jsonRoutes maps each kind to its path and the payload field holding the value.
var jsonRoutes = map[sampler.Kind]struct{ path, field string }{
	sampler.KindCPU:  {"/cpu", "cpu"},
	sampler.KindRAM:  {"/ram", "ram"},
	sampler.KindDisk: {"/disk/" + server.DiskPercentage, "percentage"},
}

func (f *JSONFetcher) Fetch(ctx context.Context, kind sampler.Kind) (uint8, error) {
	route, ok := jsonRoutes[kind]
	if !ok {
		return 0, errors.New(errors.ErrProtocol, "No route for metric "+kind.String(), "")
	}

	body, err := get(ctx, f.http, f.base+route.path)
	if err != nil {
		return 0, err
	}

	var payload map[string]json.Number
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrFetch,
			"Malformed response from "+route.path, "")
	}
	raw, ok := payload[route.field]
	if !ok {
		return 0, errors.New(errors.ErrFetch,
			fmt.Sprintf("Response from %s has no %q field", route.path, route.field), "")
	}
	v, err := raw.Float64()
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrFetch,
			fmt.Sprintf("Non-numeric %q in response from %s", route.field, route.path), "")
	}
	return toPercent(v), nil
}

// PrometheusFetcher scrapes /metrics and reads the matching gauge.
type PrometheusFetcher struct {
	base string
	http *http.Client
}

var promGauges = map[sampler.Kind]string{
	sampler.KindCPU:  server.MetricCPUPercent,
	sampler.KindRAM:  server.MetricRAMPercent,
	sampler.KindDisk: server.MetricDiskPercent,
}

func (f *PrometheusFetcher) Fetch(ctx context.Context, kind sampler.Kind) (uint8, error) {
	name, ok := promGauges[kind]
	if !ok {
		return 0, errors.New(errors.ErrProtocol, "No gauge for metric "+kind.String(), "")
	}

	body, err := get(ctx, f.http, f.base+"/metrics")
	if err != nil {
		return 0, err
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(strings.NewReader(string(body)))
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrFetch, "Malformed /metrics exposition", "")
	}
	family, ok := families[name]
	if !ok || len(family.GetMetric()) == 0 {
		return 0, errors.New(errors.ErrFetch, name+" missing from /metrics", "")
	}
	return toPercent(family.GetMetric()[0].GetGauge().GetValue()), nil
}

func get(ctx context.Context, hc *http.Client, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch, "Cannot build request for "+target, "")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch, "Request to "+target+" failed",
			"Check that 'rcpu serve' is running")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch, "Cannot read response from "+target, "")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrFetch,
			fmt.Sprintf("%s returned %s", target, resp.Status), "")
	}
	return body, nil
}

// toPercent truncates v toward zero and clamps it to [0,100].
func toPercent(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return uint8(v)
}
