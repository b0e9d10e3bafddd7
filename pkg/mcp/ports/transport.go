// Package ports defines the interfaces the protocol engine needs from
// infrastructure. These are "ports" in hexagonal architecture -
// contracts defined by engine needs, not by external systems.
package ports

import "context"

// Transport is one bidirectional framed byte stream. The dispatcher is
// written against this interface and never downcasts; adding another
// transport discipline (a socket stream, say) does not touch the engine.
type Transport interface {
	// Send writes one complete framed message. Concurrent callers are
	// serialized internally; partial frames never interleave. A payload
	// that violates the transport's framing discipline is rejected with
	// a framing error before any bytes are written.
	Send(ctx context.Context, frame []byte) error

	// Frames returns the inbound frame channel. Frames are delivered in
	// arrival order; the channel is closed when the underlying stream
	// ends (EOF, broken pipe, subprocess exit). This is the single
	// point where the dispatcher blocks waiting for I/O.
	Frames() <-chan []byte

	// Err returns the terminal stream error once Frames is closed. A
	// nil result means the stream ended with a clean EOF.
	Err() error

	// Close shuts down both directions. It is idempotent.
	Close() error
}
