package goRelay

import (
	"context"
)

const (
	auditEventSessionStored  = "session_stored"
	auditEventSessionCleared = "session_cleared"
	auditEventSessionRead    = "session_read"
	auditEventLogout         = "logout"
	auditEventAuthCheck      = "auth_check"
)

func (e *Engine) emitAudit(ctx context.Context, kind MessageType, eventType string, success bool, err error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		EventType:   eventType,
		RequestID:   requestIDFromContext(ctx),
		MessageType: string(kind),
		Source:      sourceFromContext(ctx),
		Success:     success,
		Metadata:    metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(ctx, event)
}
