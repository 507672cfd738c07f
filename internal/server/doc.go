// Package server implements the MCP (Model Context Protocol) server for
// wallpaper calibration tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the calibration and
// profile operations through the MCP protocol, so an assistant can walk a user
// through taking screenshots, checking them and solving the crop step by step.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_dimensions: Get width, height and transparency
//   - pattern_generate: Write a calibration pattern
//   - edges_locate: Measure the pattern border in a screenshot
//   - crop_solve: Solve the device crop box from two screenshots
//   - mask_extract: Build the visibility mask from a marker screenshot
//   - tint_detect: Measure lock screen darkening
//
// # Image Caching
//
// Images are cached by path for the lifetime of the server process. Tools
// that write an image evict its path so a later call sees the new file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which names the stage and input
package server
