package mcp

import (
	"errors"
	"testing"

	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

func TestStateMachineHappyPath(t *testing.T) {
	m := &stateMachine{}

	if got := m.current(); got != stateUninitialized {
		t.Fatalf("initial state = %v, want uninitialized", got)
	}
	if err := m.beginHandshake(); err != nil {
		t.Fatalf("beginHandshake() error = %v", err)
	}
	if got := m.current(); got != stateHandshaking {
		t.Fatalf("state = %v, want handshaking", got)
	}
	m.toReady()
	if got := m.current(); got != stateReady {
		t.Fatalf("state = %v, want ready", got)
	}
	if err := m.requireReady(); err != nil {
		t.Errorf("requireReady() error = %v in ready state", err)
	}
}

func TestBeginHandshakeTwice(t *testing.T) {
	m := &stateMachine{}

	if err := m.beginHandshake(); err != nil {
		t.Fatal(err)
	}
	err := m.beginHandshake()
	if !mcperrs.IsState(err) {
		t.Fatalf("second beginHandshake() error = %v, want a state error", err)
	}

	var se *mcperrs.StateError
	errors.As(err, &se)
	if se.Code() != mcperrs.ErrCodeAlreadyInitialized {
		t.Errorf("code = %s, want %s", se.Code(), mcperrs.ErrCodeAlreadyInitialized)
	}
	// The failed call must not disturb the state.
	if got := m.current(); got != stateHandshaking {
		t.Errorf("state = %v after rejected handshake, want handshaking", got)
	}
}

func TestRequireReadyBeforeHandshake(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(m *stateMachine)
		wantCode mcperrs.ErrorCode
	}{
		{
			"uninitialized",
			func(m *stateMachine) {},
			mcperrs.ErrCodeNotInitialized,
		},
		{
			"handshaking",
			func(m *stateMachine) { _ = m.beginHandshake() },
			mcperrs.ErrCodeNotInitialized,
		},
		{
			"closed",
			func(m *stateMachine) { m.toClosed() },
			mcperrs.ErrCodeClientClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &stateMachine{}
			tt.prepare(m)

			err := m.requireReady()
			if !mcperrs.IsState(err) {
				t.Fatalf("requireReady() error = %v, want a state error", err)
			}
			var se *mcperrs.StateError
			errors.As(err, &se)
			if se.Code() != tt.wantCode {
				t.Errorf("code = %s, want %s", se.Code(), tt.wantCode)
			}
		})
	}
}

func TestStateNeverRegresses(t *testing.T) {
	m := &stateMachine{}
	_ = m.beginHandshake()
	m.toReady()
	m.toClosed()

	// Closed is terminal: toReady after close must not resurrect.
	m.toReady()
	if got := m.current(); got != stateClosed {
		t.Errorf("state = %v after close, want closed", got)
	}

	if err := m.beginHandshake(); !mcperrs.IsState(err) {
		t.Errorf("beginHandshake() on closed = %v, want a state error", err)
	}
}

func TestToClosedIdempotent(t *testing.T) {
	m := &stateMachine{}
	m.toClosed()
	m.toClosed()
	if got := m.current(); got != stateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}
