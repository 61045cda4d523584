// Package goRelay is the background service of a browser extension that relays one
// authentication session between a content script and a popup UI, and checks
// whether the user is signed in to the remote service.
//
// The package is designed for concurrent callers: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Message surface
//
// Callers send a [Message] tagged by type:
//
//	SUPABASE_SESSION      store the session (null/falsy session clears the slot)
//	GET_SUPABASE_SESSION  read the session
//	LOGOUT_SUPABASE       clear the session
//	AUTH_CHECK            probe the remote service for a signed-in session
//
// [Engine.Dispatch] answers every recognized message exactly once through the
// reply callback, asynchronously, and reports false without ever replying for
// unrecognized types so other listeners on a shared bus can answer instead.
//
// # Architecture boundaries
//
// goRelay is the public surface. It exposes [Engine], [Builder], [Config] and the
// message types. Storage backends live in session/, the HTTP probe in probe/, and
// transport adapters in transport/. Flow orchestration, audit dispatch and metric
// storage live under internal/.
//
// # What this package must NOT do
//
//   - Inspect, validate, refresh or encrypt the session record.
//   - Retry failed storage or network operations.
//   - Serialize concurrent writers beyond what the storage backend guarantees.
package goRelay
