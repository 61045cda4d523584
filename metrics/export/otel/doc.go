// Package otel publishes goRelay metrics through OpenTelemetry.
//
// [NewOTelExporter] registers an Int64ObservableCounter per relay counter and
// an Int64ObservableGauge per histogram bucket. One callback reads
// [goRelay.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
