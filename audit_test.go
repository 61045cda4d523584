package goRelay

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/MrEthical07/goRelay/session"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newAuditedEngine(t *testing.T, sink AuditSink) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Probe.URL = "http://127.0.0.1:1/create-reference"
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Audit.BufferSize = 16

	e, err := New().WithConfig(cfg).WithStore(session.NewMemoryStore()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return e
}

func TestAuditOneEventPerHandledMessage(t *testing.T) {
	out := &lockedBuffer{}
	e := newAuditedEngine(t, NewJSONWriterSink(out))
	ctx := context.Background()

	for _, msg := range []Message{
		{Type: TypeStoreSession, Session: SessionRecord(`{"a":1}`)},
		{Type: TypeGetSession},
		{Type: TypeStoreSession, Session: SessionRecord(`null`)},
		{Type: TypeLogout},
		{Type: "UNKNOWN"},
	} {
		_, _ = e.Handle(ctx, msg)
	}
	e.Close()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	wantTypes := []string{
		auditEventSessionStored,
		auditEventSessionRead,
		auditEventSessionCleared,
		auditEventLogout,
	}
	if len(lines) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d: %q", len(wantTypes), len(lines), lines)
	}
	for i, line := range lines {
		var ev AuditEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %d not JSON: %v", i, err)
		}
		if ev.EventType != wantTypes[i] {
			t.Fatalf("event %d: expected %s, got %s", i, wantTypes[i], ev.EventType)
		}
		if !ev.Success || ev.RequestID == "" || ev.Timestamp.IsZero() {
			t.Fatalf("event %d incomplete: %+v", i, ev)
		}
	}
}

func TestAuditRecordsFailures(t *testing.T) {
	sink := NewChannelSink(4)
	e := newAuditedEngine(t, sink)

	r, err := e.Handle(context.Background(), Message{Type: TypeAuthCheck})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	e.Close()

	if r.LoggedIn || r.Error == "" {
		t.Fatalf("expected transport failure, got %+v", r)
	}
	ev := <-sink.Events()
	if ev.EventType != auditEventAuthCheck || ev.Success || ev.Error == "" {
		t.Fatalf("unexpected audit event %+v", ev)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(4)
	e, err := New().WithStore(session.NewMemoryStore()).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	_ = e.Logout(context.Background())
	e.Close()

	select {
	case ev := <-sink.Events():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
	if e.AuditDropped() != 0 {
		t.Fatal("disabled audit must not count drops")
	}
}
