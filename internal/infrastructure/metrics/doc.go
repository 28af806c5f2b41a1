// Package metrics publishes BlockFlow runtime metrics via expvar. The server
// binary renders them at /debug/vars and in Prometheus text format at
// /metrics without any external metrics dependency.
package metrics
