package mcp

import (
	"sync"

	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// connState is the lifecycle phase of a client connection. It only
// advances uninitialized -> handshaking -> ready, or to closed from any
// state; it never regresses.
type connState int

const (
	stateUninitialized connState = iota
	stateHandshaking
	stateReady
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateHandshaking:
		return "handshaking"
	case stateReady:
		return "ready"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stateMachine guards the handshake gating. Using explicit transitions
// rather than a boolean flag keeps "initialize called twice" and
// "operation before ready" distinct, testable error conditions.
type stateMachine struct {
	mu sync.Mutex
	s  connState
}

func (m *stateMachine) current() connState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.s
}

// beginHandshake moves uninitialized -> handshaking. From any other
// state it fails with a state error and has no side effects.
func (m *stateMachine) beginHandshake() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.s {
	case stateUninitialized:
		m.s = stateHandshaking

		return nil
	case stateHandshaking, stateReady:
		return mcperrs.NewStateError(
			mcperrs.ErrCodeAlreadyInitialized,
			"initialize already called",
		)
	default:
		return mcperrs.NewStateError(
			mcperrs.ErrCodeClientClosed,
			"client is closed",
		)
	}
}

// toReady completes the handshake. Valid only from handshaking; a
// concurrent close wins and the transition is ignored.
func (m *stateMachine) toReady() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s == stateHandshaking {
		m.s = stateReady
	}
}

// toClosed is valid from any state and idempotent.
func (m *stateMachine) toClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.s = stateClosed
}

// requireReady is the synchronous gate every operational call passes
// before an identifier is allocated or the transport is touched.
func (m *stateMachine) requireReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.s {
	case stateReady:
		return nil
	case stateClosed:
		return mcperrs.NewStateError(
			mcperrs.ErrCodeClientClosed,
			"client is closed",
		)
	default:
		return mcperrs.NewStateError(
			mcperrs.ErrCodeNotInitialized,
			"client is not initialized",
		)
	}
}
