// Package mcp implements a client for the Model Context Protocol: a
// JSON-RPC request/response protocol a host process uses to drive a
// locally spawned server subprocess over its standard streams.
//
// The package is organized around three layers. A ports.Transport
// carries framed messages over a byte stream; the stdio adapter is the
// one concrete variant. A Conn owns a transport, runs the single
// reader loop, and correlates asynchronous responses with their
// requests by identifier. A Client gates typed operations behind the
// initialize handshake and classifies failures: transport errors are
// fatal to the connection, protocol errors are scoped to one request,
// and state errors mark caller misuse.
//
// Typical use spawns a server with ClientBuilder:
//
//	client, err := mcp.NewClientBuilder("uvx").
//		Arg("notes-simple").
//		StartAndInitialize(ctx)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	tools, err := client.ListTools(ctx)
package mcp
