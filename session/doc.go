// Package session provides single-slot persistence for an opaque authentication
// session record.
//
// # Storage model
//
// A [Store] is a capability interface with get, set and delete on byte values.
// The relay keeps exactly one record under one fixed key ([DefaultKey]); a Set
// replaces the previous value and never merges. Values never expire.
//
// Three backends are provided:
//
//   - [MemoryStore] — process-local map, used by tests and as a dev default.
//   - [RedisStore] — one Redis string per key, SET without TTL.
//   - [SQLiteStore] — a local SQLite file, the closest analogue to extension local storage.
//
// # Architecture boundaries
//
// This package owns byte persistence. It does NOT decode, validate or refresh the
// stored record. The record is caller-owned and opaque.
//
// # What this package must NOT do
//
//   - Import goRelay or probe (no upward imports).
//   - Inspect or transform stored values.
//   - Retry failed backend operations.
package session
