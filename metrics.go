package goRelay

import (
	internalmetrics "github.com/MrEthical07/goRelay/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process metrics
// system.
type MetricID = internalmetrics.MetricID

const (
	// MetricSessionStored counts successful non-null stores.
	MetricSessionStored = internalmetrics.MetricSessionStored
	// MetricSessionCleared counts stores that carried no session and cleared the slot.
	MetricSessionCleared = internalmetrics.MetricSessionCleared
	// MetricSessionRead counts reads that found a record.
	MetricSessionRead = internalmetrics.MetricSessionRead
	// MetricSessionMiss counts reads of an empty slot.
	MetricSessionMiss = internalmetrics.MetricSessionMiss
	// MetricLogout counts successful logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricStorageFailure counts storage-layer errors across all relay operations.
	MetricStorageFailure = internalmetrics.MetricStorageFailure
	// MetricSessionRejectedTooLarge counts records refused for exceeding the size quota.
	MetricSessionRejectedTooLarge = internalmetrics.MetricSessionRejectedTooLarge
	// MetricAuthCheckLoggedIn counts probes classified as logged in.
	MetricAuthCheckLoggedIn = internalmetrics.MetricAuthCheckLoggedIn
	// MetricAuthCheckLoggedOut counts completed probes classified as logged out.
	MetricAuthCheckLoggedOut = internalmetrics.MetricAuthCheckLoggedOut
	// MetricAuthCheckTransportFailure counts probes that failed at the transport.
	MetricAuthCheckTransportFailure = internalmetrics.MetricAuthCheckTransportFailure
	// MetricUnrecognizedMessage counts dropped messages of unknown type.
	MetricUnrecognizedMessage = internalmetrics.MetricUnrecognizedMessage
	// MetricHandlerPanic counts operations that panicked and were answered with a failure.
	MetricHandlerPanic = internalmetrics.MetricHandlerPanic
	// MetricStorageLatency is the storage operation latency histogram.
	MetricStorageLatency = internalmetrics.MetricStorageLatency
	// MetricProbeLatency is the auth probe latency histogram.
	MetricProbeLatency = internalmetrics.MetricProbeLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
