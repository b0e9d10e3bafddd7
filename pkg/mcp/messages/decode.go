package messages

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a decoded inbound frame.
type Kind int

const (
	// KindResponse is a response to a prior client request.
	KindResponse Kind = iota
	// KindNotification is a server-to-client notification.
	KindNotification
	// KindRequest is a server-to-client request (sampling, roots). The
	// client engine does not serve these; the reader loop drops them.
	KindRequest
)

// Envelope is a decoded inbound frame before it is routed. Exactly one
// of the message shapes is populated; Kind tells which.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Kind reports the message shape of the envelope.
func (e *Envelope) Kind() Kind {
	if e.Method != "" {
		if e.ID == nil {
			return KindNotification
		}

		return KindRequest
	}

	return KindResponse
}

// Response converts a KindResponse envelope into a Response.
func (e *Envelope) Response() *Response {
	return &Response{
		JSONRPC: e.JSONRPC,
		ID:      *e.ID,
		Result:  e.Result,
		Error:   e.Error,
	}
}

// Notification converts a KindNotification envelope into a Notification.
func (e *Envelope) Notification() *Notification {
	return &Notification{
		JSONRPC: e.JSONRPC,
		Method:  e.Method,
		Params:  e.Params,
	}
}

// Decode parses one frame and validates JSON-RPC 2.0 structure. A
// frame that is not valid JSON, carries the wrong version, or mixes
// message shapes is malformed; the caller drops it.
func Decode(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if env.JSONRPC != Version {
		return nil, fmt.Errorf("invalid JSON-RPC version %q", env.JSONRPC)
	}

	hasResult := env.Result != nil
	hasError := env.Error != nil

	if env.Method != "" {
		if hasResult || hasError {
			return nil, fmt.Errorf("request %q carries result or error", env.Method)
		}

		return &env, nil
	}

	// No method: must be a response.
	if hasResult && hasError {
		return nil, fmt.Errorf("response carries both result and error")
	}
	if !hasResult && !hasError {
		return nil, fmt.Errorf("message has neither method nor result nor error")
	}
	if env.ID == nil || env.ID.IsNil() {
		return nil, fmt.Errorf("response has no id")
	}

	return &env, nil
}
