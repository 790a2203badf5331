// Package app provides the application context and dependency management
// for the sheetsync CLI: configuration, logging, the lazily created client
// and the cobra command tree.
package app

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/cmd/application"
	syncpkg "github.com/agentstation/sheetsync/pkg/sync"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the sheetsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Streams
	stdout io.Writer
	stderr io.Writer

	// Client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client sheetsync.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config file; the root
// command refreshes it once flags are parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig("")
		if err != nil {
			return nil, err
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config, app.stderr)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Stdout returns the stream the action batch and command output go to.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// Stderr returns the stream summaries and diagnostics go to.
func (a *App) Stderr() io.Writer {
	return a.stderr
}

// ImportOptions returns the import options derived from the configuration.
func (a *App) ImportOptions() []syncpkg.Option {
	return a.config.ImportOptions()
}

// Client returns the sheetsync client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (sheetsync.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := sheetsync.New(
		sheetsync.WithStoreDSN(a.config.Store.Driver, a.config.Store.DSN),
		sheetsync.WithOutput(a.stdout),
	)
	if err != nil {
		return nil, err
	}
	c.OnDegraded(func(err error) {
		a.logger.Debug().Err(err).Msg("Import continued past a soft failure")
	})

	a.client = c
	return c, nil
}

// Shutdown releases the client.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a prebuilt client.
func WithClient(c sheetsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// WithStreams redirects command output and diagnostics.
func WithStreams(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
		return nil
	}
}
