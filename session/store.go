package session

import (
	"context"
	"errors"
)

// DefaultKey is the storage slot holding the relayed session record.
const DefaultKey = "supabase_session"

// ErrNotFound is returned by [Store.Get] when the key holds no value.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable wraps failures reported by a storage backend.
var ErrUnavailable = errors.New("session storage unavailable")

// Store is the key-value capability the relay is built on.
//
// Implementations must make each single-key operation atomic: concurrent Set and
// Delete calls on the same key resolve to whichever completed last. Delete of a
// missing key returns nil.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
