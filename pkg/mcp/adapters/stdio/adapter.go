// Package stdio implements the Transport port over a pair of byte
// streams, normally a subprocess's stdin and stdout. Messages are
// framed as newline-delimited JSON: one message per line.
package stdio

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/ports"
	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// Verify interface compliance at compile time.
var _ ports.Transport = (*Adapter)(nil)

const defaultMaxFrameSize = 1024 * 1024 // 1MB

// Adapter implements ports.Transport over an io.WriteCloser (outbound)
// and an io.ReadCloser (inbound).
type Adapter struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *slog.Logger

	frames       chan []byte
	done         chan struct{}
	maxFrameSize int

	writeMu sync.Mutex // serializes frame writes

	mu        sync.Mutex
	closed    bool
	streamErr error

	closeOnce sync.Once
	closeErr  error
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithMaxFrameSize caps the size of a single inbound frame.
func WithMaxFrameSize(n int) Option {
	return func(a *Adapter) {
		a.maxFrameSize = n
	}
}

// New creates an Adapter over the given streams and starts its read
// loop. The adapter owns both streams and closes them on Close.
func New(stdin io.WriteCloser, stdout io.ReadCloser, opts ...Option) *Adapter {
	a := &Adapter{
		stdin:        stdin,
		stdout:       stdout,
		logger:       slog.Default(),
		frames:       make(chan []byte, 16),
		done:         make(chan struct{}),
		maxFrameSize: defaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(a)
	}

	go a.readLoop()

	return a
}

// Send implements ports.Transport. A frame containing an embedded
// newline would corrupt the stream for every later message, so it is
// rejected up front with a framing error.
func (a *Adapter) Send(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bytes.IndexByte(frame, '\n') >= 0 {
		return mcperrs.NewFramingError(
			mcperrs.ErrCodeEmbeddedNewline,
			"frame contains an embedded newline",
			nil,
		)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return mcperrs.NewConnClosedError(nil)
	}

	// One Write call per frame so a failure cannot leave half a line
	// on the wire.
	payload := make([]byte, 0, len(frame)+1)
	payload = append(payload, frame...)
	payload = append(payload, '\n')
	if _, err := a.stdin.Write(payload); err != nil {
		return mcperrs.NewTransportError(
			mcperrs.ErrCodeWriteFailed,
			"write frame",
			err,
		)
	}

	return nil
}

// Frames implements ports.Transport.
func (a *Adapter) Frames() <-chan []byte {
	return a.frames
}

// Err implements ports.Transport.
func (a *Adapter) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.streamErr
}

// Close implements ports.Transport. Closing the read stream unblocks
// the read loop, which then closes the frame channel.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		close(a.done)

		inErr := a.stdin.Close()
		outErr := a.stdout.Close()
		if inErr != nil {
			a.closeErr = inErr
		} else {
			a.closeErr = outErr
		}
	})

	return a.closeErr
}

// readLoop buffers stdout until each newline and hands complete frames
// to the channel. It exits when the stream ends, recording the
// terminal error and closing the frame channel.
func (a *Adapter) readLoop() {
	defer close(a.frames)

	scanner := bufio.NewScanner(a.stdout)
	scanner.Buffer(make([]byte, 64*1024), a.maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		// The scanner reuses its buffer between calls.
		frame := make([]byte, len(line))
		copy(frame, line)

		select {
		case a.frames <- frame:
		case <-a.done:
			return
		}
	}

	if err := scanner.Err(); err != nil {
		a.mu.Lock()
		a.streamErr = mcperrs.NewTransportError(
			mcperrs.ErrCodeReadFailed,
			"read frame",
			err,
		)
		a.mu.Unlock()
		a.logger.Debug("stdio transport read loop terminated", "err", err)

		return
	}

	a.logger.Debug("stdio transport reached end of stream")
}
