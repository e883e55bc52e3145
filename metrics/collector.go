// Package metrics exposes the memory runtime's global statistics as
// Prometheus metrics for leak auditing in long-running processes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/numforge/nrt-go/nrt"
)

// Collector reads the runtime counters on every scrape. Register it with
// a prometheus.Registerer; it holds no state of its own.
type Collector struct {
	bytesAllocated   *prometheus.Desc
	bytesFreed       *prometheus.Desc
	handlesAllocated *prometheus.Desc
	handlesFreed     *prometheus.Desc
	bytesLive        *prometheus.Desc
	handlesLive      *prometheus.Desc
}

// NewCollector creates a collector over the process-wide runtime stats.
func NewCollector() *Collector {
	return &Collector{
		bytesAllocated: prometheus.NewDesc(
			"nrt_bytes_allocated_total",
			"Bytes obtained through the global allocator binding.",
			nil, nil),
		bytesFreed: prometheus.NewDesc(
			"nrt_bytes_freed_total",
			"Bytes returned through the global allocator binding.",
			nil, nil),
		handlesAllocated: prometheus.NewDesc(
			"nrt_handles_allocated_total",
			"MemInfo handles created.",
			nil, nil),
		handlesFreed: prometheus.NewDesc(
			"nrt_handles_freed_total",
			"MemInfo handles destroyed.",
			nil, nil),
		bytesLive: prometheus.NewDesc(
			"nrt_bytes_live",
			"Bytes currently outstanding against the global binding.",
			nil, nil),
		handlesLive: prometheus.NewDesc(
			"nrt_handles_live",
			"MemInfo handles currently live.",
			nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytesAllocated
	ch <- c.bytesFreed
	ch <- c.handlesAllocated
	ch <- c.handlesFreed
	ch <- c.bytesLive
	ch <- c.handlesLive
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := nrt.ReadStats()
	ch <- prometheus.MustNewConstMetric(c.bytesAllocated, prometheus.CounterValue, float64(s.Alloc))
	ch <- prometheus.MustNewConstMetric(c.bytesFreed, prometheus.CounterValue, float64(s.Free))
	ch <- prometheus.MustNewConstMetric(c.handlesAllocated, prometheus.CounterValue, float64(s.MiAlloc))
	ch <- prometheus.MustNewConstMetric(c.handlesFreed, prometheus.CounterValue, float64(s.MiFree))
	ch <- prometheus.MustNewConstMetric(c.bytesLive, prometheus.GaugeValue, float64(s.Alloc-s.Free))
	ch <- prometheus.MustNewConstMetric(c.handlesLive, prometheus.GaugeValue, float64(s.MiAlloc-s.MiFree))
}

var _ prometheus.Collector = (*Collector)(nil)
