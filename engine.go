package goRelay

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	internalaudit "github.com/MrEthical07/goRelay/internal/audit"
	"github.com/MrEthical07/goRelay/internal/flows"
	"github.com/MrEthical07/goRelay/probe"
	"github.com/MrEthical07/goRelay/session"
)

// Engine is the message dispatch surface. Build one with [Builder].
//
// The Session Relay and Auth Prober share nothing but this dispatcher; each
// message is resolved independently with no ordering across messages.
type Engine struct {
	config  Config
	store   session.Store
	prober  *probe.Prober
	flows   flows.Service
	audit   *internalaudit.Dispatcher
	metrics *Metrics
	logger  *slog.Logger
	newID   func() string

	probes singleflight.Group
}

// Close flushes and stops the audit dispatcher. It does not close the store.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events lost to backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the current counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// Installed logs that the background service is loaded and listening. Hosts
// call it once at startup.
func (e *Engine) Installed(ctx context.Context) {
	if e == nil {
		return
	}
	e.logger.InfoContext(ctx, "relay background service installed",
		"storage_key", e.config.Session.StorageKey,
		"probe_url", e.prober.URL(),
	)
}

// operation resolves msg to the handler that produces its single Response.
func (e *Engine) operation(msg Message) (func(context.Context) Response, bool) {
	switch msg.Type {
	case TypeStoreSession:
		rec := msg.Session
		return func(ctx context.Context) Response { return e.handleStore(ctx, rec) }, true
	case TypeGetSession:
		return e.handleGet, true
	case TypeLogout:
		return e.handleLogout, true
	case TypeAuthCheck:
		return e.handleAuthCheck, true
	default:
		return nil, false
	}
}

func (e *Engine) prepare(ctx context.Context, msg Message) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := msg.RequestID
	if id == "" {
		id = requestIDFromContext(ctx)
	}
	if id == "" {
		id = e.newID()
	}
	return WithRequestID(ctx, id)
}

func (e *Engine) dropUnrecognized(ctx context.Context, msg Message) {
	e.metricInc(MetricUnrecognizedMessage)
	e.logger.DebugContext(ctx, "ignoring unrecognized message", "type", string(msg.Type))
}

// Handle runs msg synchronously and returns its Response. Unknown types yield
// [ErrUnrecognizedMessage] and no Response.
func (e *Engine) Handle(ctx context.Context, msg Message) (Response, error) {
	if !e.ready() {
		return Response{}, ErrEngineNotReady
	}
	op, ok := e.operation(msg)
	if !ok {
		e.dropUnrecognized(ctx, msg)
		return Response{}, fmt.Errorf("%w: %q", ErrUnrecognizedMessage, msg.Type)
	}
	ctx = e.prepare(ctx, msg)
	resp := e.runGuarded(ctx, msg.Type, op)
	resp.RequestID = msg.RequestID
	return resp, nil
}

// Submit starts msg and returns a channel that yields exactly one Response and
// is then closed. The Response echoes msg.RequestID. ok is false for unknown
// types; no operation runs and no Response is ever produced.
func (e *Engine) Submit(ctx context.Context, msg Message) (<-chan Response, bool) {
	if !e.ready() {
		return nil, false
	}
	op, ok := e.operation(msg)
	if !ok {
		e.dropUnrecognized(ctx, msg)
		return nil, false
	}
	ctx = e.prepare(ctx, msg)

	out := make(chan Response, 1)
	go func() {
		defer close(out)
		resp := e.runGuarded(ctx, msg.Type, op)
		resp.RequestID = msg.RequestID
		out <- resp
	}()
	return out, true
}

// Dispatch starts msg and calls reply exactly once, from another goroutine,
// when it resolves. It returns true when a reply is coming and false for
// unrecognized types, in which case reply is never called.
func (e *Engine) Dispatch(ctx context.Context, msg Message, reply func(Response)) bool {
	pending, ok := e.Submit(ctx, msg)
	if !ok {
		return false
	}
	go func() {
		resp := <-pending
		if reply != nil {
			reply(resp)
		}
	}()
	return true
}

// runGuarded turns a panicking operation into a failure Response so one message
// cannot break other pending ones.
func (e *Engine) runGuarded(ctx context.Context, kind MessageType, op func(context.Context) Response) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			e.metricInc(MetricHandlerPanic)
			e.logger.ErrorContext(ctx, "message handler panicked",
				"type", string(kind),
				"request_id", requestIDFromContext(ctx),
				"panic", fmt.Sprint(r),
			)
			resp = failureResponse(kind, fmt.Sprintf("internal error: %v", r))
		}
	}()
	return op(ctx)
}

func failureResponse(kind MessageType, msg string) Response {
	if kind == TypeAuthCheck {
		return Response{Type: kind, LoggedIn: false, Error: msg}
	}
	return Response{Type: kind, Success: false, Error: msg}
}
