package goRelay

import (
	"encoding/json"
	"io"

	internalaudit "github.com/MrEthical07/goRelay/internal/audit"
)

// MessageType is the discriminator carried in Message.Type.
type MessageType string

const (
	// TypeStoreSession stores a session; a null or falsy session clears the slot.
	TypeStoreSession MessageType = "SUPABASE_SESSION"
	// TypeGetSession reads the stored session.
	TypeGetSession MessageType = "GET_SUPABASE_SESSION"
	// TypeLogout clears the stored session.
	TypeLogout MessageType = "LOGOUT_SUPABASE"
	// TypeAuthCheck probes the remote service for a signed-in session.
	TypeAuthCheck MessageType = "AUTH_CHECK"
)

// Known reports whether t is one of the four handled message types.
func (t MessageType) Known() bool {
	switch t {
	case TypeStoreSession, TypeGetSession, TypeLogout, TypeAuthCheck:
		return true
	default:
		return false
	}
}

// SessionRecord is the caller-owned session payload, stored and returned verbatim.
type SessionRecord = json.RawMessage

// Message is one request on the dispatch surface.
type Message struct {
	Type    MessageType   `json:"type"`
	Session SessionRecord `json:"session,omitempty"`
	// RequestID correlates logs and audit events; generated when empty.
	RequestID string `json:"requestId,omitempty"`
}

// Response is the single reply to a recognized Message. Which fields are
// meaningful depends on Type; see MarshalJSON for the wire shapes.
type Response struct {
	Type     MessageType
	Success  bool
	Session  SessionRecord
	LoggedIn bool
	Error    string
	// RequestID echoes Message.RequestID when the caller supplied one.
	RequestID string
}

type relayReply struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type sessionReply struct {
	Success   bool            `json:"success"`
	Session   json.RawMessage `json:"session"`
	RequestID string          `json:"requestId,omitempty"`
}

type authReply struct {
	LoggedIn  bool   `json:"loggedIn"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// MarshalJSON renders the wire shape for r.Type:
//
//	StoreSession, Logout  {"success":bool[,"error":string]}
//	GetSession            {"success":true,"session":<record|null>} or the failure shape above
//	AuthCheck             {"loggedIn":bool[,"error":string]}
//
// Every shape carries "requestId" when the originating Message had one.
func (r Response) MarshalJSON() ([]byte, error) {
	switch {
	case r.Type == TypeAuthCheck:
		return json.Marshal(authReply{LoggedIn: r.LoggedIn, Error: r.Error, RequestID: r.RequestID})
	case r.Type == TypeGetSession && r.Success:
		return json.Marshal(sessionReply{Success: true, Session: json.RawMessage(r.Session), RequestID: r.RequestID})
	default:
		return json.Marshal(relayReply{Success: r.Success, Error: r.Error, RequestID: r.RequestID})
	}
}

// Failure returns the failure shape for r's type with msg as the error,
// keeping the request id.
func (r Response) Failure(msg string) Response {
	out := failureResponse(r.Type, msg)
	out.RequestID = r.RequestID
	return out
}

// AuditEvent is a structured audit record emitted once per handled message.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
