package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanpama/hostgraph/internal/property"
)

// StatsSource is implemented by *property.Resolver.
type StatsSource interface {
	Stats() property.Stats
}

// Collector exports resolver statistics to Prometheus. Values are read from
// the source on every scrape, so the collector holds no state of its own.
type Collector struct {
	source StatsSource

	lookups     *prometheus.Desc
	discoveries *prometheus.Desc
	absences    *prometheus.Desc
	failures    *prometheus.Desc
	entries     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for source with metric names under
// namespace.
func NewCollector(namespace string, source StatsSource) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "property", n) }
	return &Collector{
		source: source,
		lookups: prometheus.NewDesc(name("lookups_total"),
			"Lookups answered without discovery, by how they were answered.",
			[]string{"result"}, nil),
		discoveries: prometheus.NewDesc(name("discoveries_total"),
			"Runs of the discovery chain for uncached (type, property) pairs.",
			nil, nil),
		absences: prometheus.NewDesc(name("absences_total"),
			"Lookups that ended without a value.",
			nil, nil),
		failures: prometheus.NewDesc(name("failures_total"),
			"Accessor invocations that returned an error or panicked.",
			nil, nil),
		entries: prometheus.NewDesc(name("cache_entries"),
			"Current number of entries per cache.",
			[]string{"cache"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lookups
	ch <- c.discoveries
	ch <- c.absences
	ch <- c.failures
	ch <- c.entries
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.lookups, s.PositiveHits, "positive_hit")
	counter(c.lookups, s.NegativeHits, "negative_hit")
	counter(c.lookups, s.ContainerReads, "container")
	counter(c.discoveries, s.Discoveries)
	counter(c.absences, s.Absences)
	counter(c.failures, s.Failures)
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.PositiveEntries), "positive")
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.NegativeEntries), "negative")
}
