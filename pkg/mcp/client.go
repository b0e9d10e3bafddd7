package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/ports"
	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// Handshake and operational method names from the protocol's catalog.
const (
	methodInitialize    = "initialize"
	methodInitialized   = "notifications/initialized"
	methodPing          = "ping"
	methodListTools     = "tools/list"
	methodCallTool      = "tools/call"
	methodListResources = "resources/list"
	methodReadResource  = "resources/read"
	methodListPrompts   = "prompts/list"
	methodGetPrompt     = "prompts/get"
	methodComplete      = "completion/complete"
	methodSetLogLevel   = "logging/setLevel"
)

const shutdownGrace = 2 * time.Second

// Client is the typed facade over one connection to an MCP server. All
// operational calls are gated on a completed handshake; see Initialize.
//
// A Client is safe for concurrent use. Responses arriving out of order
// are correlated by request id, so concurrent calls never steal each
// other's results.
type Client struct {
	conn   *Conn
	state  *stateMachine
	logger *slog.Logger

	impl Implementation
	caps ClientCapabilities

	mu         sync.RWMutex
	initResult *InitializeResult

	proc *process // nil unless spawned via ClientBuilder
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	logger   *slog.Logger
	impl     Implementation
	caps     ClientCapabilities
	onNotify NotificationHandler
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithImplementation sets the identity the client announces during the
// handshake.
func WithImplementation(name, version string) ClientOption {
	return func(c *clientConfig) {
		c.impl = Implementation{Name: name, Version: version}
	}
}

// WithCapabilities sets the capabilities the client declares during
// the handshake.
func WithCapabilities(caps ClientCapabilities) ClientOption {
	return func(c *clientConfig) {
		c.caps = caps
	}
}

// WithNotifications registers the sink for server notifications.
func WithNotifications(h NotificationHandler) ClientOption {
	return func(c *clientConfig) {
		c.onNotify = h
	}
}

// NewClient creates a client over the given transport. The connection's
// reader loop starts immediately; no bytes are written until
// Initialize.
func NewClient(transport ports.Transport, opts ...ClientOption) *Client {
	cfg := clientConfig{
		logger: slog.Default(),
		impl:   Implementation{Name: "mcp-client-go", Version: "0.1.0"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Client{
		conn: NewConn(transport,
			WithConnLogger(cfg.logger),
			WithNotificationHandler(cfg.onNotify),
		),
		state:  &stateMachine{},
		logger: cfg.logger,
		impl:   cfg.impl,
		caps:   cfg.caps,
	}

	// Transport closure (subprocess exit, broken pipe) must move the
	// lifecycle to closed even when the caller never calls Close.
	go func() {
		<-c.conn.Done()
		c.state.toClosed()
	}()

	return c
}

// Initialize performs the capability negotiation handshake. It is
// valid exactly once, from the uninitialized state; any other state
// yields a state error without touching the transport. On failure of
// any kind the client is closed.
func (c *Client) Initialize(ctx context.Context) (*InitializeResult, error) {
	if err := c.state.beginHandshake(); err != nil {
		return nil, err
	}

	result, err := c.handshake(ctx)
	if err != nil {
		c.state.toClosed()
		c.conn.Close()

		return nil, err
	}

	c.mu.Lock()
	c.initResult = result
	c.mu.Unlock()
	c.state.toReady()
	c.logger.Debug("handshake complete",
		"server", result.ServerInfo.Name,
		"version", result.ServerInfo.Version,
		"protocol", result.ProtocolVersion)

	return result, nil
}

func (c *Client) handshake(ctx context.Context) (*InitializeResult, error) {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		ClientInfo:      c.impl,
		Capabilities:    c.caps,
	}

	pending, err := c.conn.Send(ctx, methodInitialize, params)
	if err != nil {
		return nil, err
	}
	raw, err := pending.Await(ctx)
	if err != nil {
		return nil, err
	}

	var result InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, mcperrs.NewProtocolError(
			mcperrs.ErrCodeInvalidResponse,
			"decode initialize result",
			err,
		)
	}

	// The handshake concludes with the initialized notification; the
	// server may not accept operational calls until it arrives.
	if err := c.conn.Notify(ctx, methodInitialized, nil); err != nil {
		return nil, err
	}

	return &result, nil
}

// call is the engine primitive every typed wrapper reuses: gate on the
// ready state, send, await, decode. The state check runs before any
// identifier is allocated.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	if err := c.state.requireReady(); err != nil {
		return err
	}

	pending, err := c.conn.Send(ctx, method, params)
	if err != nil {
		return err
	}
	raw, err := pending.Await(ctx)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return mcperrs.NewProtocolError(
			mcperrs.ErrCodeInvalidResponse,
			"decode result for "+method,
			err,
		)
	}

	return nil
}

// Call sends a raw request for any method in the protocol's catalog
// and returns the undecoded result. The typed wrappers cover the
// common methods; Call is the escape hatch for the rest.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call(ctx, method, params, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// Notify sends a fire-and-forget notification to the server.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	if err := c.state.requireReady(); err != nil {
		return err
	}

	return c.conn.Notify(ctx, method, params)
}

// Ping checks that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, methodPing, nil, nil)
}

// ListTools lists the tools the server exposes.
func (c *Client) ListTools(ctx context.Context) (*ListToolsResult, error) {
	var result ListToolsResult
	if err := c.call(ctx, methodListTools, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetTool returns the named tool, or nil if the server does not
// expose it.
func (c *Client) GetTool(ctx context.Context, name string) (*Tool, error) {
	tools, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tools.Tools {
		if tools.Tools[i].Name == name {
			return &tools.Tools[i], nil
		}
	}

	return nil, nil
}

// CallTool invokes a tool by name. args is marshalled as the tool's
// arguments object; nil means no arguments.
//
// A result with IsError set is returned as a normal successful result:
// the protocol lets servers deliver business-logic failures inside a
// success-shaped payload, and interpreting those belongs to the
// caller. Only a genuine JSON-RPC error object comes back as an error.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*CallToolResult, error) {
	rawArgs, err := marshalArgs(args)
	if err != nil {
		return nil, err
	}

	params := CallToolParams{
		Name:      name,
		Arguments: rawArgs,
		Meta:      &RequestMeta{ProgressToken: uuid.NewString()},
	}

	var result CallToolResult
	if err := c.call(ctx, methodCallTool, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListResources lists the resources the server exposes.
func (c *Client) ListResources(ctx context.Context) (*ListResourcesResult, error) {
	var result ListResourcesResult
	if err := c.call(ctx, methodListResources, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ReadResource retrieves the contents of a resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	var result ReadResourceResult
	if err := c.call(ctx, methodReadResource, ReadResourceParams{URI: uri}, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListPrompts lists the prompt templates the server exposes.
func (c *Client) ListPrompts(ctx context.Context) (*ListPromptsResult, error) {
	var result ListPromptsResult
	if err := c.call(ctx, methodListPrompts, nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPrompt renders a prompt template with the given arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*GetPromptResult, error) {
	var result GetPromptResult
	params := GetPromptParams{Name: name, Arguments: args}
	if err := c.call(ctx, methodGetPrompt, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Complete asks the server for argument completion suggestions.
func (c *Client) Complete(ctx context.Context, params CompleteParams) (*CompleteResult, error) {
	var result CompleteResult
	if err := c.call(ctx, methodComplete, params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SetLogLevel asks the server to adjust its diagnostic verbosity.
func (c *Client) SetLogLevel(ctx context.Context, level string) error {
	return c.call(ctx, methodSetLogLevel, map[string]string{"level": level}, nil)
}

// ServerInfo returns the server identity negotiated by the handshake.
// The zero value before the handshake completes.
func (c *Client) ServerInfo() Implementation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.initResult == nil {
		return Implementation{}
	}

	return c.initResult.ServerInfo
}

// ServerCapabilities returns the capability set the server declared
// during the handshake. The zero value before the handshake completes.
func (c *Client) ServerCapabilities() ServerCapabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.initResult == nil {
		return ServerCapabilities{}
	}

	return c.initResult.Capabilities
}

// NegotiatedVersion returns the protocol version agreed during the
// handshake, or "" before it completes.
func (c *Client) NegotiatedVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.initResult == nil {
		return ""
	}

	return c.initResult.ProtocolVersion
}

// Done is closed once the connection has torn down, whether by Close
// or by the transport failing underneath it.
func (c *Client) Done() <-chan struct{} {
	return c.conn.Done()
}

// Close tears down the connection and, when the client was spawned via
// ClientBuilder, shuts the subprocess down: close stdin, wait briefly,
// kill if it lingers. Close is idempotent; every pending call observes
// a connection-closed error.
func (c *Client) Close() error {
	c.state.toClosed()
	err := c.conn.Close()

	if c.proc != nil {
		err = errors.Join(err, c.proc.shutdown(shutdownGrace))
	}

	return err
}

// StderrTail returns the last n lines the subprocess wrote to stderr.
// Only available for clients spawned via ClientBuilder; stderr is not
// part of the protocol channel, it is captured purely for diagnostics.
func (c *Client) StderrTail(n int) (string, error) {
	if c.proc == nil {
		return "", errors.New("mcp: no subprocess stderr available")
	}

	return c.proc.stderrTail(n)
}

func marshalArgs(args any) (json.RawMessage, error) {
	if args == nil {
		return nil, nil
	}
	if raw, ok := args.(json.RawMessage); ok {
		return raw, nil
	}

	return json.Marshal(args)
}
