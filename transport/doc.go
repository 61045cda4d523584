// Package transport mounts a goRelay.Engine on real message channels.
//
// # Adapters
//
//   - [Handler] serves POST /message as JSON over HTTP.
//   - [NativeHost] speaks the browser native-messaging protocol on a
//     reader/writer pair, normally stdin and stdout.
//
// Both adapters hand each inbound message to the engine independently and
// write its single reply when it resolves. Unrecognized message types produce
// no reply: an empty 204 over HTTP and no frame at all over native messaging.
//
// # Architecture boundaries
//
// This package translates wire framing into Engine calls. It does NOT store
// sessions or classify probe results itself.
//
// # What this package must NOT do
//
//   - Access a session store directly (Engine handles I/O).
//   - Retry failed operations.
//   - Reorder or merge replies for distinct messages.
package transport
