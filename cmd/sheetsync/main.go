// Package main provides the entry point for the sheetsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/sheetsync/cmd/sheetsync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())

	err = application.Execute(ctx, os.Args[1:])
	if shutdownErr := application.Shutdown(); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}
	cancel()
	app.ExitOnError(err)
}
