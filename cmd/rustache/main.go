// Package main provides the Rustache command-line interface.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcreekmore/rustache/internal/cli"
)

func main() {
	// Ctrl+C cancels the command context; serve and --watch use it to
	// shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
