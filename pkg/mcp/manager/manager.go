// Package manager aggregates several MCP servers behind one tool
// catalog. Each configured server is spawned and initialized; tools
// are indexed by name and calls are routed to the server that owns
// them.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp"
)

// ToolDescription is one entry of the merged tool catalog.
type ToolDescription struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Server      string
}

type toolBinding struct {
	server string
	tool   string
}

// Manager holds one initialized client per configured server.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*mcp.Client
	tools   map[string]toolBinding
	catalog []ToolDescription
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New spawns and initializes every configured server, then builds the
// merged tool catalog. If any server fails, the ones already started
// are shut down and the error is returned.
//
// Servers are started in name order so tool-name collisions resolve
// deterministically: the first registration wins and later ones are
// logged and skipped.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		logger:  slog.Default(),
		clients: make(map[string]*mcp.Client),
		tools:   make(map[string]toolBinding),
	}
	for _, opt := range opts {
		opt(m)
	}

	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.startServer(ctx, name, cfg.MCPServers[name]); err != nil {
			_ = m.Close()

			return nil, fmt.Errorf("manager: start server %q: %w", name, err)
		}
	}

	return m, nil
}

func (m *Manager) startServer(ctx context.Context, name string, sc ServerConfig) error {
	builder := mcp.NewClientBuilder(sc.Command).
		Args(sc.Args...).
		Logger(m.logger.With("mcp_server", name))
	for key, value := range sc.Env {
		builder = builder.Env(key, value)
	}

	client, err := builder.StartAndInitialize(ctx)
	if err != nil {
		return err
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		_ = client.Close()

		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[name] = client
	for _, tool := range tools.Tools {
		if prior, exists := m.tools[tool.Name]; exists {
			m.logger.Warn("skipping duplicate tool registration",
				"tool", tool.Name,
				"server", name,
				"registered_server", prior.server)

			continue
		}
		m.tools[tool.Name] = toolBinding{server: name, tool: tool.Name}
		m.catalog = append(m.catalog, ToolDescription{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
			Server:      name,
		})
	}

	return nil
}

// Tools returns the merged tool catalog.
func (m *Manager) Tools() []ToolDescription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	catalog := make([]ToolDescription, len(m.catalog))
	copy(catalog, m.catalog)

	return catalog
}

// CallTool routes a tool invocation to the server that registered it.
func (m *Manager) CallTool(ctx context.Context, name string, args any) (*mcp.CallToolResult, error) {
	m.mu.RLock()
	binding, ok := m.tools[name]
	client := m.clients[binding.server]
	m.mu.RUnlock()

	if !ok || client == nil {
		return nil, fmt.Errorf("manager: unknown tool %q", name)
	}

	return client.CallTool(ctx, binding.tool, args)
}

// Client returns the client for a named server.
func (m *Manager) Client(name string) (*mcp.Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[name]

	return client, ok
}

// Close shuts every server down, reporting the joined errors.
func (m *Manager) Close() error {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*mcp.Client)
	m.tools = make(map[string]toolBinding)
	m.catalog = nil
	m.mu.Unlock()

	var errs []error
	for name, client := range clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
