// Package main is the entry point for the tasker CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasker/internal/backend/functions"
	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/logging"
	"tasker/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return functions.New(ctx, cfg.Backend, logging.New(os.Stderr, cfg.Debug))
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
