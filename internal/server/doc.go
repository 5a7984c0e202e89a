// Package server implements the MCP (Model Context Protocol) server for the
// image tools.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0, one message per line:
//   - Input: JSON-RPC requests read from the given reader (stdin in production)
//   - Output: JSON-RPC responses written to the given writer (stdout)
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_overlay: Paste one image onto another
//   - image_combine: Lay images out in a row or column
//   - image_filter: Grayscale, brightness, contrast or blur
//   - image_reshape: Circle, square or rounded-corner mask
//   - image_inspect: Dimensions, format and color summary
//
// Inputs and outputs are local paths or s3:// URIs. Decoded inputs are
// cached for the lifetime of the server; writing an output drops any
// cached copy of that location.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(images, version, logger)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
