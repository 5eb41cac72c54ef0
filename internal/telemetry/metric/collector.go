package metric

import "github.com/prometheus/client_golang/prometheus"

// StatsFunc reports the number of stored keys and how many of them are
// logically expired.
type StatsFunc func() (keys, expired int)

// Collector reports store occupancy at scrape time.
type Collector struct {
	stats StatsFunc

	keys    *prometheus.Desc
	expired *prometheus.Desc
}

// NewCollector creates a collector reading occupancy from stats.
func NewCollector(stats StatsFunc) *Collector {
	return &Collector{
		stats: stats,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Keys held in the store, expired ones included",
			nil, nil,
		),
		expired: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys_expired"),
			"Keys past their expiration that have not been removed yet",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.expired
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	keys, expired := c.stats()
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(keys))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.GaugeValue, float64(expired))
}
