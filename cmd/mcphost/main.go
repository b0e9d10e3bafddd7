// Command mcphost is a small host for MCP servers: it spawns every
// server named in a config file, runs the handshake, and exposes their
// merged tool and resource catalogs from the command line.
//
// Usage:
//
//	mcphost [flags] tools
//	mcphost [flags] call <tool> [json-arguments]
//	mcphost [flags] resources <server>
//
// Flags may also come from the environment (MCPHOST_CONFIG,
// MCPHOST_TIMEOUT, MCPHOST_VERBOSE).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/pflag"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp/manager"
)

type hostConfig struct {
	ConfigPath string        `env:"MCPHOST_CONFIG,default=config.json"`
	Timeout    time.Duration `env:"MCPHOST_TIMEOUT,default=30s"`
	Verbose    bool          `env:"MCPHOST_VERBOSE,default=false"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mcphost:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg hostConfig
	// Defaults come from struct tags; unset variables are not an error.
	_ = envdecode.Decode(&cfg)

	pflag.StringVarP(&cfg.ConfigPath, "config", "c", cfg.ConfigPath,
		"path to the mcpServers config file")
	pflag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout,
		"per-command deadline")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose,
		"enable debug logging")
	pflag.Parse()

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	args := pflag.Args()
	if len(args) == 0 {
		return fmt.Errorf("missing command: tools | call | resources")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	servers, err := manager.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return err
	}

	mgr, err := manager.New(ctx, servers, manager.WithLogger(logger))
	if err != nil {
		return err
	}
	defer mgr.Close()

	switch args[0] {
	case "tools":
		return listTools(mgr)
	case "call":
		if len(args) < 2 {
			return fmt.Errorf("usage: call <tool> [json-arguments]")
		}
		rawArgs := "{}"
		if len(args) > 2 {
			rawArgs = args[2]
		}

		return callTool(ctx, mgr, args[1], rawArgs)
	case "resources":
		if len(args) < 2 {
			return fmt.Errorf("usage: resources <server>")
		}

		return listResources(ctx, mgr, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listTools(mgr *manager.Manager) error {
	for _, tool := range mgr.Tools() {
		fmt.Printf("%s\t[%s]\t%s\n", tool.Name, tool.Server, tool.Description)
	}

	return nil
}

func callTool(ctx context.Context, mgr *manager.Manager, name, rawArgs string) error {
	var args json.RawMessage
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Errorf("arguments must be valid JSON: %w", err)
	}

	result, err := mgr.CallTool(ctx, name, args)
	if err != nil {
		return err
	}
	if result.IsError {
		// The server reported a tool-level failure inside a successful
		// response; surface it without treating the call as failed.
		fmt.Fprintf(os.Stderr, "tool reported an error:\n")
	}
	fmt.Println(result.TextContent())

	return nil
}

func listResources(ctx context.Context, mgr *manager.Manager, server string) error {
	client, ok := mgr.Client(server)
	if !ok {
		return fmt.Errorf("unknown server %q", server)
	}

	resources, err := client.ListResources(ctx)
	if err != nil {
		return err
	}
	for _, res := range resources.Resources {
		fmt.Printf("%s\t%s\t%s\n", res.URI, res.Name, res.Description)
	}

	return nil
}
