package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/importcmd"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/inspect"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/manifest"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(importcmd.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(inspect.NewCommand(a))
	rootCmd.AddCommand(manifest.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			_, err := fmt.Fprintf(w,
				"sheetsync version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s/%s\n",
				a.version, a.commit, a.date, a.builtBy,
				runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
