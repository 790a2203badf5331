// Package application provides the application interface for sheetsync commands.
//
// Commands accept an Application instead of the concrete app type so they
// can be tested against internal/cmd/application.Mock.
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            result, err := client.Import(cmd.Context(), app.ImportOptions()...)
//	            // ...
//	        },
//	    }
//	}
package application

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// Application provides what commands need from the running program.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the sheetsync client, created on first use.
	Client() (sheetsync.Client, error)

	// ImportOptions returns the import options assembled from the config
	// file and environment. Commands append flag options after them.
	ImportOptions() []sync.Option

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// Stdout receives command output such as the action batch.
	Stdout() io.Writer

	// Stderr receives summaries and diagnostics.
	Stderr() io.Writer

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
