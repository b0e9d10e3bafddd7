package mcperrs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

func TestCategoriesAreDisjoint(t *testing.T) {
	transport := mcperrs.NewTransportError(mcperrs.ErrCodeIOError, "io", nil)
	protocol := mcperrs.NewServerError(-32601, "method not found", nil)
	state := mcperrs.NewStateError(mcperrs.ErrCodeNotInitialized, "not initialized")
	framing := mcperrs.NewFramingError(mcperrs.ErrCodeEmbeddedNewline, "newline", nil)

	tests := []struct {
		name      string
		err       error
		transport bool
		protocol  bool
		state     bool
		framing   bool
	}{
		{"transport", transport, true, false, false, false},
		{"protocol", protocol, false, true, false, false},
		{"state", state, false, false, true, false},
		{"framing", framing, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mcperrs.IsTransport(tt.err); got != tt.transport {
				t.Errorf("IsTransport() = %v, want %v", got, tt.transport)
			}
			if got := mcperrs.IsProtocol(tt.err); got != tt.protocol {
				t.Errorf("IsProtocol() = %v, want %v", got, tt.protocol)
			}
			if got := mcperrs.IsState(tt.err); got != tt.state {
				t.Errorf("IsState() = %v, want %v", got, tt.state)
			}
			if got := mcperrs.IsFraming(tt.err); got != tt.framing {
				t.Errorf("IsFraming() = %v, want %v", got, tt.framing)
			}
		})
	}
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	inner := mcperrs.NewServerError(-32602, "invalid params", nil)
	wrapped := fmt.Errorf("calling tool: %w", inner)

	if !mcperrs.IsProtocol(wrapped) {
		t.Error("IsProtocol() should see through fmt.Errorf wrapping")
	}

	pe, ok := mcperrs.AsProtocol(wrapped)
	if !ok {
		t.Fatal("AsProtocol() failed on wrapped error")
	}
	if pe.RPCCode() != -32602 {
		t.Errorf("RPCCode() = %d, want -32602", pe.RPCCode())
	}
}

func TestConnClosedSentinel(t *testing.T) {
	plain := mcperrs.NewConnClosedError(nil)
	if !errors.Is(plain, mcperrs.ErrConnClosed) {
		t.Error("conn-closed error without cause should match ErrConnClosed")
	}

	cause := errors.New("broken pipe")
	withCause := mcperrs.NewConnClosedError(cause)
	if !errors.Is(withCause, mcperrs.ErrConnClosed) {
		t.Error("conn-closed error with cause should match ErrConnClosed")
	}
	if !errors.Is(withCause, cause) {
		t.Error("conn-closed error should preserve its cause")
	}
	if !mcperrs.IsTransport(withCause) {
		t.Error("conn-closed error should classify as transport")
	}
}

func TestServerErrorCarriesData(t *testing.T) {
	data := json.RawMessage(`{"detail":"missing field"}`)
	err := mcperrs.NewServerError(-32602, "invalid params", data)

	if string(err.Data()) != string(data) {
		t.Errorf("Data() = %s, want %s", err.Data(), data)
	}
	if err.Code() != mcperrs.ErrCodeServerError {
		t.Errorf("Code() = %s, want %s", err.Code(), mcperrs.ErrCodeServerError)
	}
	if got, want := err.Metadata()["rpc_code"], -32602; got != want {
		t.Errorf("metadata rpc_code = %v, want %v", got, want)
	}
}

func TestErrorMessageIncludesCategory(t *testing.T) {
	err := mcperrs.NewStateError(mcperrs.ErrCodeAlreadyInitialized, "initialize already called")
	want := "state: initialize already called"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
