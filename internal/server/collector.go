package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/rcpu/internal/logger"
)

const namespace = "rcpu"

// scrapeTimeout bounds the sampling done for one /metrics scrape.
const scrapeTimeout = 2 * time.Second

// Metric names exported on /metrics. The dashboard's prometheus protocol
// reads the same names.
const (
	MetricCPUPercent  = namespace + "_cpu_usage_percent"
	MetricRAMPercent  = namespace + "_memory_usage_percent"
	MetricDiskPercent = namespace + "_disk_usage_percent"
	MetricDiskUsed    = namespace + "_disk_used_bytes"
	MetricDiskTotal   = namespace + "_disk_total_bytes"
)

// hostCollector samples on every scrape so /metrics never serves stale values.
// A failed metric is omitted from the scrape and logged.
type hostCollector struct {
	metrics Metrics
	log     logger.Logger

	cpu, ram, disk, diskUsed, diskTotal *prometheus.Desc
}

func newHostCollector(m Metrics, log logger.Logger) *hostCollector {
	return &hostCollector{
		metrics:   m,
		log:       log,
		cpu:       prometheus.NewDesc(MetricCPUPercent, "CPU busy share over the sampling window.", nil, nil),
		ram:       prometheus.NewDesc(MetricRAMPercent, "Share of memory not available.", nil, nil),
		disk:      prometheus.NewDesc(MetricDiskPercent, "Used share of the sampled filesystem.", nil, nil),
		diskUsed:  prometheus.NewDesc(MetricDiskUsed, "Used bytes of the sampled filesystem.", nil, nil),
		diskTotal: prometheus.NewDesc(MetricDiskTotal, "Total bytes of the sampled filesystem.", nil, nil),
	}
}

func (c *hostCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpu
	ch <- c.ram
	ch <- c.disk
	ch <- c.diskUsed
	ch <- c.diskTotal
}

func (c *hostCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	gauge := func(desc *prometheus.Desc, name string, v float64, err error) {
		if err != nil {
			c.log.Error("scrape %s: %v", name, err)
			return
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v)
	}

	cpu, err := c.metrics.CPU(ctx)
	gauge(c.cpu, "cpu", float64(cpu), err)

	ram, err := c.metrics.RAM(ctx)
	gauge(c.ram, "ram", float64(ram), err)

	disk, err := c.metrics.Disk(ctx)
	gauge(c.disk, "disk", float64(disk), err)

	capacity, err := c.metrics.DiskBytes(ctx)
	gauge(c.diskUsed, "disk used", float64(capacity.Used), err)
	gauge(c.diskTotal, "disk total", float64(capacity.Total), err)
}
