// Package mcp provides the Model Context Protocol (MCP) server for avaloniamcp using mcp-go.
//
// The server exposes the AvaloniaUI knowledge base to AI assistants. Every
// document is rendered to markdown by the knowledge package and memoized in
// the resource cache, so repeated reads are served from memory until their
// TTL runs out or the underlying data file changes.
//
// # Resources
//
//   - avalonia://controls         controls reference
//   - avalonia://xaml-patterns    every XAML pattern
//   - avalonia://migration-guide  WPF to Avalonia migration guide
//   - avalonia://controls/{name}  a single control (template)
//   - avalonia://guides/{name}    a markdown guide (template, plus one static
//     resource per guide discovered at startup)
//
// # Tools
//
//   - lookup_control(name)
//   - search_xaml_patterns(query)
//   - cache_stats()
//   - clear_cache()
//
// Errors from the knowledge layer are reported as tool errors rather than
// protocol errors so the assistant can read them.
//
// # Usage
//
// The MCP server is typically started as a subprocess by AI assistants that support
// MCP integration. It can also be started manually for testing:
//
//	avaloniamcp serve
//
// The server will read JSON-RPC requests from stdin and write responses to stdout
// until it receives EOF or is terminated.
//
// # Architecture
//
// The Server struct contains:
//   - config: Application configuration with data directory and cache tuning
//   - logger: Application logger for debugging and audit
//   - cache: The resource cache shared by every handler
//   - base: The knowledge base reading from the data directory
//   - mcpServer: The underlying mcp-go server instance
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp
