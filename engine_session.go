package goRelay

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goRelay/internal/flows"
)

// StoreSession writes rec to the session slot, replacing any previous record.
// A nil, empty or JSON-null/falsy rec clears the slot instead.
//
// Storage failures wrap [ErrStorage]; oversized records return [ErrSessionTooLarge].
func (e *Engine) StoreSession(ctx context.Context, rec SessionRecord) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	ctx = e.prepare(ctx, Message{Type: TypeStoreSession})
	_, err := e.storeSession(ctx, rec)
	return wrapStorage(err)
}

// GetSession returns the stored record, or nil when the slot is empty.
func (e *Engine) GetSession(ctx context.Context) (SessionRecord, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	ctx = e.prepare(ctx, Message{Type: TypeGetSession})
	rec, err := e.getSession(ctx)
	return rec, wrapStorage(err)
}

// Logout clears the session slot. Clearing an empty slot succeeds.
func (e *Engine) Logout(ctx context.Context) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	ctx = e.prepare(ctx, Message{Type: TypeLogout})
	return wrapStorage(e.logout(ctx))
}

func (e *Engine) handleStore(ctx context.Context, rec SessionRecord) Response {
	if _, err := e.storeSession(ctx, rec); err != nil {
		return Response{Type: TypeStoreSession, Error: err.Error()}
	}
	return Response{Type: TypeStoreSession, Success: true}
}

func (e *Engine) handleGet(ctx context.Context) Response {
	rec, err := e.getSession(ctx)
	if err != nil {
		return Response{Type: TypeGetSession, Error: err.Error()}
	}
	return Response{Type: TypeGetSession, Success: true, Session: rec}
}

func (e *Engine) handleLogout(ctx context.Context) Response {
	if err := e.logout(ctx); err != nil {
		return Response{Type: TypeLogout, Error: err.Error()}
	}
	return Response{Type: TypeLogout, Success: true}
}

func (e *Engine) storeSession(ctx context.Context, rec SessionRecord) (bool, error) {
	log := e.logger.With("request_id", requestIDFromContext(ctx), "type", string(TypeStoreSession))

	cleared := flows.IsAbsentRecord(rec)
	if cleared {
		log.DebugContext(ctx, "received null session, clearing stored session")
	} else {
		log.DebugContext(ctx, "received session, storing", "bytes", len(rec))
	}

	start := time.Now()
	res := e.flows.Store(ctx, rec)
	e.observeStorage(start)

	event := auditEventSessionStored
	if res.Cleared {
		event = auditEventSessionCleared
	}

	if res.Err != nil {
		if errors.Is(res.Err, ErrSessionTooLarge) {
			e.metricInc(MetricSessionRejectedTooLarge)
		} else {
			e.metricInc(MetricStorageFailure)
		}
		if res.Cleared {
			log.ErrorContext(ctx, "error clearing stored session", "error", res.Err)
		} else {
			log.ErrorContext(ctx, "error storing session", "error", res.Err)
		}
		e.emitAudit(ctx, TypeStoreSession, event, false, res.Err, nil)
		return res.Cleared, res.Err
	}

	if res.Cleared {
		e.metricInc(MetricSessionCleared)
		log.DebugContext(ctx, "stored session cleared")
	} else {
		e.metricInc(MetricSessionStored)
		log.DebugContext(ctx, "session stored")
	}
	e.emitAudit(ctx, TypeStoreSession, event, true, nil, nil)
	return res.Cleared, nil
}

func (e *Engine) getSession(ctx context.Context) (SessionRecord, error) {
	log := e.logger.With("request_id", requestIDFromContext(ctx), "type", string(TypeGetSession))
	log.DebugContext(ctx, "received request for session")

	start := time.Now()
	res := e.flows.Get(ctx)
	e.observeStorage(start)

	if res.Err != nil {
		e.metricInc(MetricStorageFailure)
		log.ErrorContext(ctx, "error retrieving session", "error", res.Err)
		e.emitAudit(ctx, TypeGetSession, auditEventSessionRead, false, res.Err, nil)
		return nil, res.Err
	}

	present := res.Record != nil
	if present {
		e.metricInc(MetricSessionRead)
	} else {
		e.metricInc(MetricSessionMiss)
	}
	log.DebugContext(ctx, "sending session", "present", present)
	e.emitAudit(ctx, TypeGetSession, auditEventSessionRead, true, nil, map[string]string{
		"present": boolString(present),
	})
	return SessionRecord(res.Record), nil
}

func (e *Engine) logout(ctx context.Context) error {
	log := e.logger.With("request_id", requestIDFromContext(ctx), "type", string(TypeLogout))
	log.DebugContext(ctx, "received logout request")

	start := time.Now()
	err := e.flows.Logout(ctx)
	e.observeStorage(start)

	if err != nil {
		e.metricInc(MetricStorageFailure)
		log.ErrorContext(ctx, "error clearing session on logout", "error", err)
		e.emitAudit(ctx, TypeLogout, auditEventLogout, false, err, nil)
		return err
	}

	e.metricInc(MetricLogout)
	log.DebugContext(ctx, "session cleared on logout")
	e.emitAudit(ctx, TypeLogout, auditEventLogout, true, nil, nil)
	return nil
}

func (e *Engine) observeStorage(start time.Time) {
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricStorageLatency, time.Since(start))
	}
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
