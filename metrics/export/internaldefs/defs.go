package internaldefs

import (
	"github.com/MrEthical07/goRelay/internal/metrics"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   metrics.MetricID
	Name string
	Help string
}

// HistogramDef names one exported latency histogram.
type HistogramDef struct {
	ID   metrics.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: metrics.MetricSessionStored, Name: "gorelay_session_stored_total", Help: "Session records written to the slot."},
	{ID: metrics.MetricSessionCleared, Name: "gorelay_session_cleared_total", Help: "Store messages without a session that cleared the slot."},
	{ID: metrics.MetricSessionRead, Name: "gorelay_session_read_total", Help: "Session reads that found a record."},
	{ID: metrics.MetricSessionMiss, Name: "gorelay_session_miss_total", Help: "Session reads of an empty slot."},
	{ID: metrics.MetricLogout, Name: "gorelay_logout_total", Help: "Successful logouts."},
	{ID: metrics.MetricStorageFailure, Name: "gorelay_storage_failure_total", Help: "Session storage errors."},
	{ID: metrics.MetricSessionRejectedTooLarge, Name: "gorelay_session_rejected_too_large_total", Help: "Session records refused for exceeding the size quota."},
	{ID: metrics.MetricAuthCheckLoggedIn, Name: "gorelay_auth_check_logged_in_total", Help: "Auth probes classified as logged in."},
	{ID: metrics.MetricAuthCheckLoggedOut, Name: "gorelay_auth_check_logged_out_total", Help: "Completed auth probes classified as logged out."},
	{ID: metrics.MetricAuthCheckTransportFailure, Name: "gorelay_auth_check_transport_failure_total", Help: "Auth probes that failed before a response arrived."},
	{ID: metrics.MetricUnrecognizedMessage, Name: "gorelay_unrecognized_message_total", Help: "Messages of unknown type dropped without reply."},
	{ID: metrics.MetricHandlerPanic, Name: "gorelay_handler_panic_total", Help: "Operations that panicked and were answered with a failure."},
}

// HistogramDefs lists every latency histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: metrics.MetricStorageLatency, Name: "gorelay_storage_latency_seconds", Help: "Session storage operation latency."},
	{ID: metrics.MetricProbeLatency, Name: "gorelay_probe_latency_seconds", Help: "Auth probe round-trip latency."},
}

// HistogramBounds are the upper bucket bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size bucket array, zero-filling.
func NormalizeBuckets(raw []uint64) [metrics.HistogramBucketCount]uint64 {
	var out [metrics.HistogramBucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative le counts.
func CumulativeBuckets(raw [metrics.HistogramBucketCount]uint64) [metrics.HistogramBucketCount]uint64 {
	var out [metrics.HistogramBucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
