package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/messages"
	"github.com/smallcloudai/mcp-client-go/pkg/mcp/ports"
	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// NotificationHandler receives server notifications. It is invoked
// synchronously from the reader loop so relative notification order is
// preserved; a slow handler delays subsequent inbound messages.
type NotificationHandler func(n *messages.Notification)

// Conn owns one transport and performs protocol-agnostic message
// correlation: it assigns request ids, keeps the table of in-flight
// requests, and runs the single reader loop that resolves them.
type Conn struct {
	transport ports.Transport
	logger    *slog.Logger
	onNotify  NotificationHandler

	nextID atomic.Int64

	mu       sync.Mutex
	pending  map[messages.RequestID]*Pending
	closed   bool
	closeErr error

	teardown sync.Once
	done     chan struct{}
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithConnLogger sets the diagnostic logger for the reader loop.
func WithConnLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		c.logger = logger
	}
}

// WithNotificationHandler registers the sink for server notifications.
// Without one, notifications are logged and dropped.
func WithNotificationHandler(h NotificationHandler) ConnOption {
	return func(c *Conn) {
		c.onNotify = h
	}
}

// NewConn creates a connection over the given transport and starts its
// reader loop.
func NewConn(transport ports.Transport, opts ...ConnOption) *Conn {
	c := &Conn{
		transport: transport,
		logger:    slog.Default(),
		pending:   make(map[messages.RequestID]*Pending),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()

	return c
}

// Pending is a caller's handle on an in-flight request. The entry in
// the table belongs to the Conn; the handle only awaits its outcome.
type Pending struct {
	id   messages.RequestID
	conn *Conn
	ch   chan outcome // capacity 1, fulfilled at most once
}

type outcome struct {
	result json.RawMessage
	err    error
}

// ID returns the identifier assigned to the request.
func (p *Pending) ID() messages.RequestID {
	return p.id
}

// Await blocks until the response arrives, the connection tears down,
// or ctx is done. Abandoning the wait removes the table entry, so a
// response that arrives later is discarded as unknown.
func (p *Pending) Await(ctx context.Context) (json.RawMessage, error) {
	select {
	case out := <-p.ch:
		return out.result, out.err
	case <-ctx.Done():
		p.conn.unregister(p.id)
		// The reader may have fulfilled the slot before the entry was
		// removed; prefer the real outcome over the context error.
		select {
		case out := <-p.ch:
			return out.result, out.err
		default:
			return nil, ctx.Err()
		}
	}
}

// Send allocates a fresh id, registers the pending entry, and writes
// the request. Registration happens before the bytes reach the
// transport so a response racing the send cannot be lost.
func (c *Conn) Send(ctx context.Context, method string, params any) (*Pending, error) {
	req, err := messages.NewRequest(messages.RequestID{}, method, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		closeErr := c.closeErr
		c.mu.Unlock()

		return nil, mcperrs.NewConnClosedError(closeErr)
	}
	id := messages.NewIntID(c.nextID.Add(1))
	req.ID = id
	p := &Pending{id: id, conn: c, ch: make(chan outcome, 1)}
	c.pending[id] = p
	c.mu.Unlock()

	frame, err := json.Marshal(req)
	if err != nil {
		c.unregister(id)

		return nil, err
	}

	if err := c.transport.Send(ctx, frame); err != nil {
		c.unregister(id)
		if mcperrs.IsFraming(err) || ctx.Err() != nil {
			// Scoped to this call; the stream was not corrupted.
			return nil, err
		}
		c.fail(err)

		return nil, err
	}

	return p, nil
}

// Notify sends a fire-and-forget notification.
func (c *Conn) Notify(ctx context.Context, method string, params any) error {
	n, err := messages.NewNotification(method, params)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		closeErr := c.closeErr
		c.mu.Unlock()

		return mcperrs.NewConnClosedError(closeErr)
	}
	c.mu.Unlock()

	frame, err := json.Marshal(n)
	if err != nil {
		return err
	}

	if err := c.transport.Send(ctx, frame); err != nil {
		if mcperrs.IsFraming(err) || ctx.Err() != nil {
			return err
		}
		c.fail(err)

		return err
	}

	return nil
}

// Close tears the connection down. Every pending request is resolved
// with a connection-closed error. Close is idempotent and safe to call
// concurrently with in-flight sends and awaits.
func (c *Conn) Close() error {
	c.fail(nil)

	return nil
}

// Done is closed once the connection has torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that tore the connection down. It is nil until
// Done is closed, and nil after a clean local Close.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		return nil
	}

	return c.closeErr
}

// readLoop is the sole consumer of the transport's inbound frames. It
// runs until the stream ends, then triggers teardown.
func (c *Conn) readLoop() {
	for frame := range c.transport.Frames() {
		env, err := messages.Decode(frame)
		if err != nil {
			// One bad frame must not affect other pending requests.
			c.logger.Warn("dropping malformed frame", "err", err)

			continue
		}

		switch env.Kind() {
		case messages.KindResponse:
			c.resolve(env.Response())
		case messages.KindNotification:
			c.deliverNotification(env.Notification())
		case messages.KindRequest:
			// This client does not serve inbound requests.
			c.logger.Warn("dropping inbound server request",
				"method", env.Method, "id", env.ID.String())
		}
	}

	c.fail(c.transport.Err())
}

// resolve matches a response to its pending entry and fulfills the
// slot exactly once. Unknown and duplicate ids are discarded.
func (c *Conn) resolve(resp *messages.Response) {
	c.mu.Lock()
	p, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Warn("dropping response with no pending request",
			"id", resp.ID.String())

		return
	}

	if resp.Error != nil {
		p.ch <- outcome{err: mcperrs.NewServerError(
			resp.Error.Code, resp.Error.Message, resp.Error.Data,
		)}

		return
	}
	p.ch <- outcome{result: resp.Result}
}

func (c *Conn) deliverNotification(n *messages.Notification) {
	if c.onNotify == nil {
		c.logger.Debug("dropping notification with no handler registered",
			"method", n.Method)

		return
	}
	c.onNotify(n)
}

// unregister removes a pending entry, typically because its caller
// abandoned the wait. A response arriving later becomes the unknown-id
// case in resolve.
func (c *Conn) unregister(id messages.RequestID) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// fail performs teardown once: it marks the connection closed, resolves
// every pending entry with a connection-closed error, and closes the
// transport. cause is nil for a clean local close.
func (c *Conn) fail(cause error) {
	c.teardown.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.closeErr = cause
		orphans := c.pending
		c.pending = make(map[messages.RequestID]*Pending)
		c.mu.Unlock()

		for _, p := range orphans {
			p.ch <- outcome{err: mcperrs.NewConnClosedError(cause)}
		}

		_ = c.transport.Close()
		close(c.done)
	})
}
