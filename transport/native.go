package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	goRelay "github.com/MrEthical07/goRelay"
	"golang.org/x/sync/semaphore"
)

const (
	// MaxInboundFrame is the largest message a browser sends to a native host.
	MaxInboundFrame = 64 << 20
	// MaxOutboundFrame is the largest reply a browser accepts from a native host.
	MaxOutboundFrame = 1 << 20
	// DefaultMaxInFlight bounds messages awaiting a reply before reads pause.
	DefaultMaxInFlight = 64

	nativeSource = "native"
)

var (
	// ErrFrameTooLarge is returned for frames over the native-messaging limits.
	ErrFrameTooLarge = errors.New("native message exceeds size limit")
	// ErrShortFrame is returned when the stream ends inside a frame.
	ErrShortFrame = errors.New("native message truncated")
)

// ReadMessage reads one length-prefixed frame. It returns io.EOF when the
// stream ends cleanly between frames.
func ReadMessage(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}

	n := binary.NativeEndian.Uint32(header[:])
	if n > MaxInboundFrame {
		return nil, fmt.Errorf("%w: %d bytes inbound", ErrFrameTooLarge, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	return payload, nil
}

// WriteMessage writes payload as one length-prefixed frame.
func WriteMessage(w io.Writer, payload []byte) error {
	if len(payload) > MaxOutboundFrame {
		return fmt.Errorf("%w: %d bytes outbound", ErrFrameTooLarge, len(payload))
	}

	frame := make([]byte, 4+len(payload))
	binary.NativeEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)

	_, err := w.Write(frame)
	return err
}

// NativeHost serves the native-messaging protocol over a reader/writer pair.
type NativeHost struct {
	relay  Relay
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	mu       sync.Mutex
	pending  sync.WaitGroup
	inflight *semaphore.Weighted
}

// NewNativeHost returns a host reading frames from in and writing replies to out.
func NewNativeHost(relay Relay, in io.Reader, out io.Writer, logger *slog.Logger) *NativeHost {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NativeHost{
		relay:    relay,
		in:       in,
		out:      out,
		logger:   logger,
		inflight: semaphore.NewWeighted(DefaultMaxInFlight),
	}
}

// Serve reads frames until the input ends, dispatching each one independently.
// At most DefaultMaxInFlight messages are outstanding; further reads wait for a
// reply to go out. Serve waits for pending replies before returning. A clean
// end of input returns nil. Canceling ctx does not interrupt a blocked read;
// close the input to stop Serve.
func (h *NativeHost) Serve(ctx context.Context) error {
	ctx = goRelay.WithSource(ctx, nativeSource)
	defer h.pending.Wait()

	for {
		payload, err := ReadMessage(h.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				h.logger.DebugContext(ctx, "native input closed")
				return nil
			}
			return err
		}

		var msg goRelay.Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.WarnContext(ctx, "skipping malformed native message", "error", err)
			continue
		}

		if err := h.inflight.Acquire(ctx, 1); err != nil {
			return err
		}
		reply, ok := h.relay.Submit(ctx, msg)
		if !ok {
			h.inflight.Release(1)
			continue
		}

		h.pending.Add(1)
		go func(kind goRelay.MessageType) {
			defer h.pending.Done()
			defer h.inflight.Release(1)
			resp, ok := <-reply
			if !ok {
				return
			}
			if err := h.write(resp); err != nil {
				h.logger.ErrorContext(ctx, "writing native reply failed", "type", string(kind), "error", err)
			}
		}(msg.Type)
	}
}

// write sends resp as one frame. A reply too large for the browser is
// replaced by the failure shape for its type so the caller still gets an
// answer.
func (h *NativeHost) write(resp goRelay.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if len(body) > MaxOutboundFrame {
		h.logger.Warn("native reply exceeds frame limit, sending failure",
			"type", string(resp.Type),
			"bytes", len(body),
		)
		body, err = json.Marshal(resp.Failure(ErrFrameTooLarge.Error()))
		if err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return WriteMessage(h.out, body)
}
