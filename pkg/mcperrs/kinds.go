package mcperrs

import (
	"encoding/json"
	"errors"
)

// TransportError represents an I/O failure: broken pipe, subprocess
// exit, or use of an already-closed connection. A transport error is
// fatal to the connection that produced it.
type TransportError struct {
	*BaseError
}

// NewTransportError creates a new transport error.
func NewTransportError(
	code ErrorCode,
	message string,
	cause error,
) *TransportError {
	return &TransportError{
		BaseError: NewBaseError(CategoryTransport, code, message, cause),
	}
}

// NewConnClosedError builds the transport error used to resolve every
// pending request on teardown. It wraps ErrConnClosed so callers can
// match it with errors.Is.
func NewConnClosedError(cause error) *TransportError {
	if cause == nil {
		cause = ErrConnClosed
	} else if !errors.Is(cause, ErrConnClosed) {
		cause = errors.Join(ErrConnClosed, cause)
	}

	return NewTransportError(ErrCodeConnectionClosed, "connection closed", cause)
}

// ProtocolError represents a well-formed response carrying a JSON-RPC
// error object. It is scoped to the request that produced it and says
// nothing about the liveness of the connection.
type ProtocolError struct {
	*BaseError
	rpcCode int
	data    json.RawMessage
}

// NewProtocolError creates a new protocol error.
func NewProtocolError(
	code ErrorCode,
	message string,
	cause error,
) *ProtocolError {
	return &ProtocolError{
		BaseError: NewBaseError(CategoryProtocol, code, message, cause),
	}
}

// NewServerError creates a protocol error from a server-supplied
// JSON-RPC error object.
func NewServerError(rpcCode int, message string, data json.RawMessage) *ProtocolError {
	e := &ProtocolError{
		BaseError: NewBaseError(CategoryProtocol, ErrCodeServerError, message, nil),
		rpcCode:   rpcCode,
		data:      data,
	}
	_ = e.WithMetadata("rpc_code", rpcCode)

	return e
}

// RPCCode returns the numeric JSON-RPC error code supplied by the server.
func (e *ProtocolError) RPCCode() int {
	return e.rpcCode
}

// Data returns the optional structured data from the server error object.
func (e *ProtocolError) Data() json.RawMessage {
	return e.data
}

// StateError represents caller misuse: an operational call before the
// handshake completed, or the handshake invoked twice.
type StateError struct {
	*BaseError
}

// NewStateError creates a new state error.
func NewStateError(code ErrorCode, message string) *StateError {
	return &StateError{
		BaseError: NewBaseError(CategoryState, code, message, nil),
	}
}

// FramingError represents a single malformed frame. Outbound framing
// violations are returned to the sender; inbound ones are diagnostic
// only and never escape the reader loop.
type FramingError struct {
	*BaseError
}

// NewFramingError creates a new framing error.
func NewFramingError(code ErrorCode, message string, cause error) *FramingError {
	return &FramingError{
		BaseError: NewBaseError(CategoryFraming, code, message, cause),
	}
}

// IsTransport reports whether err is (or wraps) a transport error.
func IsTransport(err error) bool {
	var te *TransportError

	return errors.As(err, &te)
}

// IsProtocol reports whether err is (or wraps) a protocol error.
func IsProtocol(err error) bool {
	var pe *ProtocolError

	return errors.As(err, &pe)
}

// IsState reports whether err is (or wraps) a state error.
func IsState(err error) bool {
	var se *StateError

	return errors.As(err, &se)
}

// IsFraming reports whether err is (or wraps) a framing error.
func IsFraming(err error) bool {
	var fe *FramingError

	return errors.As(err, &fe)
}

// AsProtocol returns the protocol error wrapped by err, if any.
func AsProtocol(err error) (*ProtocolError, bool) {
	var pe *ProtocolError
	ok := errors.As(err, &pe)

	return pe, ok
}
