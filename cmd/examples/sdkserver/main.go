// Package main is a demo MCP server built on the official Go SDK. It
// serves a couple of arithmetic tools over stdio, giving the client
// examples something real to talk to:
//
//	go build -o sdkserver ./cmd/examples/sdkserver
//	quickstart ./sdkserver
package main

import (
	"context"
	"fmt"
	"log"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MathArgs defines arguments for the arithmetic tools.
type MathArgs struct {
	A float64 `json:"a" jsonschema:"description=First number,required"`
	B float64 `json:"b" jsonschema:"description=Second number,required"`
}

// MathResult is the result of an arithmetic tool.
type MathResult struct {
	Result float64 `json:"result"`
}

func main() {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "sdkserver",
		Version: "0.1.0",
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add",
		Description: "Add two numbers",
	}, addHandler)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "divide",
		Description: "Divide two numbers",
	}, divideHandler)

	if err := server.Run(context.Background(), &mcpsdk.StdioTransport{}); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func addHandler(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	args MathArgs,
) (*mcpsdk.CallToolResult, MathResult, error) {
	return nil, MathResult{Result: args.A + args.B}, nil
}

func divideHandler(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	args MathArgs,
) (*mcpsdk.CallToolResult, MathResult, error) {
	if args.B == 0 {
		return nil, MathResult{}, fmt.Errorf("division by zero")
	}

	return nil, MathResult{Result: args.A / args.B}, nil
}
