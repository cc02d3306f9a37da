// Package main is the entry point for the avaloniamcp CLI application.
//
// Running the binary without a subcommand starts the MCP server on stdio.
// The remaining subcommands work on the same knowledge base and cache
// without speaking MCP:
//
//	avaloniamcp serve                      serve MCP over stdin/stdout
//	avaloniamcp preload                    warm the cache and print statistics
//	avaloniamcp resources                  list resources and templates
//	avaloniamcp render avalonia://controls render a resource in the terminal
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"avaloniamcp/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
