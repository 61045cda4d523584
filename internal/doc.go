// Package internal holds the engine pieces that are private to goRelay.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function orchestrators for every relay operation
//   - metrics — lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRelay API.
//   - Be imported by any package outside the goRelay module.
package internal
