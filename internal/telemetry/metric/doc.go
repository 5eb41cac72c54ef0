// Package metric provides Prometheus metrics for kvdis.
//
//   - prometheus.go: registry, command/snapshot/connection metrics, HTTP handler
//   - collector.go: scrape-time store occupancy
//
// Metrics are exposed at /metrics by the HTTP side-car when it is enabled.
package metric
