// Package tools implements the three image tools exposed over MCP:
// generate_image, save_generated_image, and generate_and_save_image.
//
// Every tool converts its own faults — validation errors, remote generation
// failures, download or filesystem errors — into a tagged success/failure
// result. The MCP boundary never sees an error from these handlers for a
// domain failure; handler errors are reserved for malformed arguments.
package tools
