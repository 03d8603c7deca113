// Package mcp implements the Model Context Protocol server surface for the
// image tools: JSON-RPC 2.0 message types, a tools-only server with stdio and
// WebSocket transports, and an HTTP handler exposing SSE, WebSocket, health
// and metrics endpoints.
package mcp
