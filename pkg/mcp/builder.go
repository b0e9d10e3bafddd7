package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/adapters/stdio"
	"github.com/smallcloudai/mcp-client-go/pkg/mcperrs"
)

// ClientBuilder assembles a command line, spawns the server subprocess,
// and wires its standard streams into a Client. The subprocess's stdout
// is the inbound protocol channel, stdin the outbound one; stderr is
// captured to a temporary file for diagnostics.
type ClientBuilder struct {
	command      string
	args         []string
	dir          string
	env          map[string]string
	logger       *slog.Logger
	impl         Implementation
	caps         ClientCapabilities
	onNotify     NotificationHandler
	maxFrameSize int
}

// NewClientBuilder creates a builder for the given command.
func NewClientBuilder(command string) *ClientBuilder {
	return &ClientBuilder{
		command: command,
		env:     make(map[string]string),
		impl:    Implementation{Name: "mcp-client-go", Version: "0.1.0"},
	}
}

// Arg appends one argument to the command line.
func (b *ClientBuilder) Arg(arg string) *ClientBuilder {
	b.args = append(b.args, arg)

	return b
}

// Args appends arguments to the command line.
func (b *ClientBuilder) Args(args ...string) *ClientBuilder {
	b.args = append(b.args, args...)

	return b
}

// Dir sets the working directory for the subprocess.
func (b *ClientBuilder) Dir(dir string) *ClientBuilder {
	b.dir = dir

	return b
}

// Env adds an environment variable to the subprocess's environment,
// on top of the parent's.
func (b *ClientBuilder) Env(key, value string) *ClientBuilder {
	b.env[key] = value

	return b
}

// Implementation sets the identity announced during the handshake.
func (b *ClientBuilder) Implementation(name, version string) *ClientBuilder {
	b.impl = Implementation{Name: name, Version: version}

	return b
}

// Capabilities sets the capabilities declared during the handshake.
func (b *ClientBuilder) Capabilities(caps ClientCapabilities) *ClientBuilder {
	b.caps = caps

	return b
}

// Logger sets the diagnostic logger for the client and its transport.
func (b *ClientBuilder) Logger(logger *slog.Logger) *ClientBuilder {
	b.logger = logger

	return b
}

// Notifications registers the sink for server notifications.
func (b *ClientBuilder) Notifications(h NotificationHandler) *ClientBuilder {
	b.onNotify = h

	return b
}

// MaxFrameSize caps the size of a single inbound frame.
func (b *ClientBuilder) MaxFrameSize(n int) *ClientBuilder {
	b.maxFrameSize = n

	return b
}

// Start spawns the subprocess and returns a client connected to it.
// The handshake has not run yet; call Initialize next, or use
// StartAndInitialize.
func (b *ClientBuilder) Start(ctx context.Context) (*Client, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(b.command, b.args...)
	if b.dir != "" {
		cmd.Dir = b.dir
	}
	cmd.Env = os.Environ()
	for key, value := range b.env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, mcperrs.NewTransportError(
			mcperrs.ErrCodeSpawnFailed, "open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, mcperrs.NewTransportError(
			mcperrs.ErrCodeSpawnFailed, "open stdout pipe", err)
	}

	stderrFile, err := os.CreateTemp("", "mcp-stderr-*.log")
	if err != nil {
		return nil, mcperrs.NewTransportError(
			mcperrs.ErrCodeSpawnFailed, "create stderr capture file", err)
	}
	cmd.Stderr = stderrFile

	if err := cmd.Start(); err != nil {
		stderrFile.Close()
		os.Remove(stderrFile.Name())

		return nil, mcperrs.NewTransportError(
			mcperrs.ErrCodeSpawnFailed, "spawn "+b.command, err)
	}
	logger.Debug("spawned MCP server process",
		"command", b.command, "args", b.args, "pid", cmd.Process.Pid)

	var adapterOpts []stdio.Option
	adapterOpts = append(adapterOpts, stdio.WithLogger(logger))
	if b.maxFrameSize > 0 {
		adapterOpts = append(adapterOpts, stdio.WithMaxFrameSize(b.maxFrameSize))
	}
	transport := stdio.New(stdin, stdout, adapterOpts...)

	client := NewClient(transport,
		WithLogger(logger),
		WithImplementation(b.impl.Name, b.impl.Version),
		WithCapabilities(b.caps),
		WithNotifications(b.onNotify),
	)
	client.proc = newProcess(cmd, stderrFile)

	return client, nil
}

// StartAndInitialize spawns the subprocess and runs the handshake. On
// handshake failure the subprocess is shut down before returning.
func (b *ClientBuilder) StartAndInitialize(ctx context.Context) (*Client, error) {
	client, err := b.Start(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := client.Initialize(ctx); err != nil {
		_ = client.Close()

		return nil, err
	}

	return client, nil
}
