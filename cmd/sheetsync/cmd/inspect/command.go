// Package inspect provides the inspect command.
package inspect

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// NewCommand creates the inspect command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var sheets []string

	cmd := &cobra.Command{
		Use:     "inspect [workbook]",
		GroupID: "management",
		Short:   "Show how each sheet would be classified and read",
		Long: `Inspect classifies every sheet of the workbook without emitting actions.

For table sheets it reports the header row, the number of data rows and
which header each field resolves to. Fields that resolve to no header are
listed with the closest headers, which usually points at a renamed column.`,
		Example: `  sheetsync inspect                     # the configured workbook
  sheetsync inspect plan.xlsx -f wide   # one row per field
  sheetsync inspect --sheet 'Q1*'       # only matching sheets`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sync.Defaults().Apply(app.ImportOptions()...).SourcePath
			if len(args) == 1 {
				path = args[0]
			}

			client, err := app.Client()
			if err != nil {
				return err
			}

			insp, err := client.Inspect(cmd.Context(), path, sheets...)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat(), app.Stdout())
			return output.FormatInspection(app.Stdout(), format, insp)
		},
	}

	cmd.Flags().StringSliceVar(&sheets, "sheet", nil,
		"Only inspect sheets matching these glob or regex patterns")

	return cmd
}
