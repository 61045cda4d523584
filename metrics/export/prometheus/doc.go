// Package prometheus renders goRelay metrics in Prometheus text format.
//
// [NewPrometheusExporter] wraps a [goRelay.Engine] and exposes an [http.Handler]
// for a /metrics route. Counters are named gorelay_*_total; the histograms are
// gorelay_storage_latency_seconds and gorelay_probe_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
