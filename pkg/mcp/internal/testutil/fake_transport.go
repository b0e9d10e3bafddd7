// Package testutil provides fakes and fixtures shared by the client
// tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/ports"
	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// Verify interface compliance at compile time.
var _ ports.Transport = (*FakeTransport)(nil)

// FakeTransport is an in-memory ports.Transport for tests. Outbound
// frames are recorded; inbound frames are injected with Deliver.
type FakeTransport struct {
	mu      sync.Mutex
	sent    [][]byte
	closed  bool
	err     error
	sendErr error

	frames    chan []byte
	closeOnce sync.Once
}

// NewFakeTransport creates a fake transport with room for inbound
// frames.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		frames: make(chan []byte, 64),
	}
}

// Send records the outbound frame.
func (t *FakeTransport) Send(_ context.Context, frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sendErr != nil {
		return t.sendErr
	}
	if t.closed {
		return mcperrs.NewConnClosedError(nil)
	}

	cp := make([]byte, len(frame))
	copy(cp, frame)
	t.sent = append(t.sent, cp)

	return nil
}

// Frames implements ports.Transport.
func (t *FakeTransport) Frames() <-chan []byte {
	return t.frames
}

// Err implements ports.Transport.
func (t *FakeTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

// Close implements ports.Transport.
func (t *FakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.closeOnce.Do(func() {
		close(t.frames)
	})

	return nil
}

// Deliver injects one inbound frame.
func (t *FakeTransport) Deliver(frame []byte) {
	t.frames <- []byte(frame)
}

// Deliverf injects one inbound frame built with fmt.Sprintf.
func (t *FakeTransport) Deliverf(format string, args ...any) {
	t.Deliver([]byte(fmt.Sprintf(format, args...)))
}

// FailStream ends the inbound stream with the given terminal error,
// as if the underlying pipe broke.
func (t *FakeTransport) FailStream(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
	t.closeOnce.Do(func() {
		close(t.frames)
	})
}

// EndStream ends the inbound stream cleanly, as if the subprocess
// exited and its stdout reached EOF.
func (t *FakeTransport) EndStream() {
	t.FailStream(nil)
}

// SetSendErr makes every subsequent Send fail with err.
func (t *FakeTransport) SetSendErr(err error) {
	t.mu.Lock()
	t.sendErr = err
	t.mu.Unlock()
}

// SentCount returns how many frames were sent.
func (t *FakeTransport) SentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.sent)
}

// Sent returns a copy of the i-th outbound frame.
func (t *FakeTransport) Sent(i int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sent[i]
}

// Closed reports whether Close was called.
func (t *FakeTransport) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closed
}
