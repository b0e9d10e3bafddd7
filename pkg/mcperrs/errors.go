// Package mcperrs defines the error taxonomy for the MCP client.
//
// Callers can distinguish four disjoint kinds of failure:
//
//   - transport errors: the connection is unusable and must be rebuilt
//   - protocol errors: the server rejected one specific request
//   - state errors: the caller invoked an operation in the wrong
//     lifecycle phase (a programming error in the caller)
//   - framing errors: a single on-wire frame was malformed
//
// Framing errors on the inbound path never reach callers; they are
// logged by the reader loop and the offending frame is dropped.
package mcperrs

import "errors"

// ErrorCategory represents the kind of failure, corresponding to the
// recovery action the caller should take.
type ErrorCategory string

const (
	// CategoryTransport represents I/O failures. Always fatal to the
	// whole connection.
	CategoryTransport ErrorCategory = "transport"
	// CategoryProtocol represents a well-formed JSON-RPC error response.
	// Scoped to the single request that produced it.
	CategoryProtocol ErrorCategory = "protocol"
	// CategoryState represents caller misuse of the connection lifecycle.
	CategoryState ErrorCategory = "state"
	// CategoryFraming represents a malformed on-wire frame.
	CategoryFraming ErrorCategory = "framing"
)

// ErrorCode represents specific error codes within each category.
type ErrorCode string

// Transport error codes.
const (
	ErrCodeIOError          ErrorCode = "io_error"
	ErrCodeWriteFailed      ErrorCode = "write_failed"
	ErrCodeReadFailed       ErrorCode = "read_failed"
	ErrCodeConnectionClosed ErrorCode = "connection_closed"
	ErrCodeProcessExited    ErrorCode = "process_exited"
	ErrCodeSpawnFailed      ErrorCode = "spawn_failed"
)

// Protocol error codes.
const (
	ErrCodeServerError     ErrorCode = "server_error"
	ErrCodeInvalidResponse ErrorCode = "invalid_response"
)

// State error codes.
const (
	ErrCodeNotInitialized     ErrorCode = "not_initialized"
	ErrCodeAlreadyInitialized ErrorCode = "already_initialized"
	ErrCodeClientClosed       ErrorCode = "client_closed"
)

// Framing error codes.
const (
	ErrCodeEmbeddedNewline ErrorCode = "embedded_newline"
	ErrCodeFrameTooLarge   ErrorCode = "frame_too_large"
	ErrCodeMalformedFrame  ErrorCode = "malformed_frame"
)

// ErrConnClosed is the sentinel cause carried by the transport error
// delivered to every pending request when the connection tears down.
// Match with errors.Is.
var ErrConnClosed = errors.New("connection closed")
