// Package main demonstrates spawning an MCP server and calling a tool.
// The server command comes from the command line, for example the
// sdkserver binary next to this example:
//
//	quickstart ./sdkserver
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/smallcloudai/mcp-client-go/pkg/mcp"
	"github.com/smallcloudai/mcp-client-go/pkg/mcp/messages"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: quickstart <server-command> [args...]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mcp.NewClientBuilder(os.Args[1]).
		Args(os.Args[2:]...).
		Implementation("quickstart", "0.1.0").
		Notifications(func(n *messages.Notification) {
			log.Printf("notification: %s", n.Method)
		}).
		StartAndInitialize(ctx)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer client.Close()

	info := client.ServerInfo()
	fmt.Printf("connected to %s %s (protocol %s)\n",
		info.Name, info.Version, client.NegotiatedVersion())

	tools, err := client.ListTools(ctx)
	if err != nil {
		log.Fatalf("list tools: %v", err)
	}
	for _, tool := range tools.Tools {
		fmt.Printf("  %s - %s\n", tool.Name, tool.Description)
	}

	result, err := client.CallTool(ctx, "add", map[string]float64{"a": 15, "b": 27})
	if err != nil {
		log.Fatalf("call tool: %v", err)
	}
	fmt.Println("add(15, 27) =", result.TextContent())
}
