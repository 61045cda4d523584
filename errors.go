package goRelay

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goRelay/internal/flows"
	"github.com/MrEthical07/goRelay/probe"
)

var (
	// ErrStorage wraps any failure reported by the session store.
	ErrStorage = errors.New("session storage failure")
	// ErrSessionTooLarge is returned when a record exceeds Config.Session.MaxSessionSize.
	ErrSessionTooLarge = flows.ErrRecordTooLarge
	// ErrTransport wraps failures to complete the auth probe.
	ErrTransport = probe.ErrTransport
	// ErrUnrecognizedMessage is returned by [Engine.Handle] for unknown message types.
	ErrUnrecognizedMessage = errors.New("unrecognized message type")
	// ErrEngineNotReady is returned when an Engine was not produced by [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)

func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSessionTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
