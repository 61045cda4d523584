// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunStore, RunGet, RunLogout, RunAuthCheck) accepts a typed
// dependency struct and returns a result value without side-effects beyond those
// dependencies. The Engine owns dispatch, metrics, audit and logging; flows only
// decide what to do with the store or the prober.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goRelay (to avoid import cycles).
//   - Perform I/O directly. All I/O goes through dependency interfaces.
package flows
