package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	goRelay "github.com/MrEthical07/goRelay"
)

const (
	// MessagePath is where Handler is conventionally mounted.
	MessagePath = "/message"
	// SourceHeader names the sending component for logs and audit events.
	SourceHeader = "X-Relay-Source"

	maxHTTPBody = 64 << 20
)

// Handler returns an http.Handler that relays one JSON Message per POST.
//
// Known types answer 200 with the JSON Response. Unknown types answer 204 with
// no body. Malformed bodies answer 400 and other methods 405.
func Handler(relay Relay, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var msg goRelay.Message
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHTTPBody))
		if err := dec.Decode(&msg); err != nil {
			logger.DebugContext(r.Context(), "rejecting malformed message", "error", err)
			http.Error(w, "malformed message", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if source := r.Header.Get(SourceHeader); source != "" {
			ctx = goRelay.WithSource(ctx, source)
		}

		pending, ok := relay.Submit(ctx, msg)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var resp goRelay.Response
		select {
		case resp = <-pending:
		case <-ctx.Done():
			logger.DebugContext(ctx, "client went away before reply", "type", string(msg.Type))
			return
		}

		body, err := json.Marshal(resp)
		if err != nil {
			logger.ErrorContext(ctx, "encoding reply failed", "type", string(msg.Type), "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
