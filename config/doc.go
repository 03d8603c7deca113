// Package config provides configuration management for the image MCP server.
//
// Configuration is loaded with precedence defaults → YAML file → environment
// variables. The package also handles startup-time env-file loading and
// OpenAI credential resolution.
package config
