package flows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
)

// ErrRecordTooLarge is returned when a record exceeds SessionDeps.MaxSize.
var ErrRecordTooLarge = errors.New("session record exceeds storage quota")

// SessionStore is the subset of session.Store the relay flows need.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SessionDeps captures relay flow dependencies.
type SessionDeps struct {
	Store SessionStore
	Key   string
	// MaxSize bounds stored records in bytes; zero disables the check.
	MaxSize int
	// IsNotFound reports whether a Get error means "slot empty".
	IsNotFound func(error) bool
}

// StoreResult reports what RunStore did.
type StoreResult struct {
	// Cleared is true when the record was absent and the slot was deleted instead.
	Cleared bool
	Err     error
}

// GetResult carries the stored record; Record is nil when the slot is empty.
type GetResult struct {
	Record []byte
	Err    error
}

// absentRecords are payloads that mean "no session": JSON null and the other
// falsy literals a loosely-typed caller may send.
var absentRecords = [][]byte{
	[]byte("null"),
	[]byte("false"),
	[]byte("0"),
	[]byte(`""`),
}

// IsAbsentRecord reports whether rec carries no session.
func IsAbsentRecord(rec []byte) bool {
	trimmed := bytes.TrimSpace(rec)
	if len(trimmed) == 0 {
		return true
	}
	for _, a := range absentRecords {
		if bytes.Equal(trimmed, a) {
			return true
		}
	}
	return false
}

// RunStore writes rec to the slot, or deletes the slot when rec is absent.
func RunStore(ctx context.Context, rec []byte, deps SessionDeps) StoreResult {
	if IsAbsentRecord(rec) {
		return StoreResult{Cleared: true, Err: deps.Store.Delete(ctx, deps.Key)}
	}
	if deps.MaxSize > 0 && len(rec) > deps.MaxSize {
		return StoreResult{Err: fmt.Errorf("%w: %d bytes > %d", ErrRecordTooLarge, len(rec), deps.MaxSize)}
	}
	return StoreResult{Err: deps.Store.Set(ctx, deps.Key, rec)}
}

// RunGet reads the slot. An empty slot is not an error.
func RunGet(ctx context.Context, deps SessionDeps) GetResult {
	rec, err := deps.Store.Get(ctx, deps.Key)
	if err != nil {
		if deps.IsNotFound != nil && deps.IsNotFound(err) {
			return GetResult{}
		}
		return GetResult{Err: err}
	}
	if len(rec) == 0 {
		return GetResult{}
	}
	return GetResult{Record: rec}
}

// RunLogout deletes the slot unconditionally.
func RunLogout(ctx context.Context, deps SessionDeps) error {
	return deps.Store.Delete(ctx, deps.Key)
}
