package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// RootFlags holds the persistent flags of the root command.
type RootFlags struct {
	ConfigFile  string
	Verbose     bool
	Quiet       bool
	NoColor     bool
	Format      string
	LogLevel    string
	StoreDriver string
	StoreDSN    string
}

// Execute runs the CLI with the given context and arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &RootFlags{}

	rootCmd := &cobra.Command{
		Use:     "sheetsync",
		Short:   "Import a planning workbook into the task and document store",
		Version: a.version,
		Long: `Sheetsync turns a multi-sheet planning workbook into an ordered batch of
create and update actions for a task and document store.

Table sheets become one task per row, tagged with the row's position so a
later sync run can find and update it. Other sheets become reference
documents. A single control document summarizes every run.

Sheetsync never writes to the store. It reads existing records, writes the
action batch and a manifest, and leaves execution to the caller.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(cmd, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "config file (default is ./.sheetsync.yaml or $HOME/.sheetsync.yaml)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringVarP(&flags.Format, "format", "f", "", "output format: table, json, yaml, wide")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.StringVar(&flags.StoreDriver, "store-driver", "", "store backend: sqlite, postgres, none")
	pf.StringVar(&flags.StoreDSN, "store-dsn", "", "store location: SQLite path or Postgres connection string")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewConfigError("flags", err.Error(), err)
	})
	rootCmd.SetVersionTemplate("sheetsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, flags *RootFlags) error {
	// Step 1: Reload from an explicit config file
	if cmd.Flags().Changed("config") {
		config, err := LoadConfig(flags.ConfigFile)
		if err != nil {
			return err
		}
		a.config = config
	}

	// Step 2: Flags take precedence over config file and env
	a.config.UpdateFromFlags(flags, cmd.Flags().Changed)
	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	// Step 3: Reinitialize logger with updated config
	logger := NewLogger(a.config, a.stderr)
	a.logger = &logger
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	a.logger.Debug().
		Str("config_file", a.config.ConfigFile).
		Str("mode", a.config.Mode).
		Str("source", a.config.Source).
		Str("store", a.config.Store.Driver).
		Msg("Configuration loaded")
	return nil
}
