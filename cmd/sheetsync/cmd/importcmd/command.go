// Package importcmd provides the import command.
package importcmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// Flags holds the import command flags.
type Flags struct {
	Mode         string
	PriorityOnly bool
	TimelineSync bool
	Source       string
	Sheets       []string
	PrimarySheet string
	Output       string
	Manifest     string
	DryRun       bool
	Timeout      time.Duration
}

// NewCommand creates the import command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:       "import [create|sync]",
		GroupID:   "core",
		Short:     "Import the workbook into an action batch",
		ValidArgs: []string{reconciler.ModeCreate.String(), reconciler.ModeSync.String()},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		Long: `Import reads every sheet of the workbook and emits the actions that bring
the task and document store in line with it.

In create mode every table row becomes a new task. In sync mode rows that
earlier imports created are updated in place and tasks whose rows vanished
are closed. The control document always comes first.

The action batch is written to the payload file and streamed to stdout.
The run summary goes to stderr.`,
		Example: `  sheetsync import                          # create mode, default workbook
  sheetsync import sync -s plan.xlsx        # reconcile against earlier imports
  sheetsync import sync --timeline-sync     # let updates move scheduled dates
  sheetsync import --priority-only          # hero/signature rows on priority sheets
  sheetsync import sync --dry-run -f json   # print the batch, write nothing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd, app, append(app.ImportOptions(), opts...))
		},
	}

	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", "",
		"Import mode: create or sync")
	cmd.Flags().BoolVar(&flags.PriorityOnly, "priority-only", false,
		"Keep only priority-tier rows on priority sheets")
	cmd.Flags().BoolVar(&flags.TimelineSync, "timeline-sync", false,
		"Let updates overwrite scheduled date, status and bucket")
	cmd.Flags().StringVarP(&flags.Source, "source", "s", "",
		"Workbook to import")
	cmd.Flags().StringSliceVar(&flags.Sheets, "sheet", nil,
		"Only import sheets matching these glob or regex patterns")
	cmd.Flags().StringVar(&flags.PrimarySheet, "primary-sheet", "",
		"Fail unless the workbook has this sheet")
	cmd.Flags().StringVar(&flags.Output, "output", "",
		"Action batch file")
	cmd.Flags().StringVar(&flags.Manifest, "manifest", "",
		"Manifest file")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false,
		"Stream the batch without writing the payload or manifest")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0,
		"Bound for the store lookup")

	return cmd
}

// options converts the flags the user set into import options.
func (f *Flags) options(cmd *cobra.Command, args []string) ([]sync.Option, error) {
	var opts []sync.Option

	modeArg := ""
	if len(args) == 1 {
		modeArg = args[0]
	}
	if cmd.Flags().Changed("mode") {
		if modeArg != "" && modeArg != f.Mode {
			return nil, &errors.ValidationError{
				Field:   "mode",
				Value:   f.Mode,
				Message: "--mode " + f.Mode + " conflicts with argument " + modeArg,
			}
		}
		modeArg = f.Mode
	}
	if modeArg != "" {
		mode, err := reconciler.ParseMode(modeArg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sync.WithMode(mode))
	}

	changed := cmd.Flags().Changed
	if changed("priority-only") {
		opts = append(opts, sync.WithPriorityOnly(f.PriorityOnly))
	}
	if changed("timeline-sync") {
		opts = append(opts, sync.WithTimelineSync(f.TimelineSync))
	}
	if changed("source") {
		opts = append(opts, sync.WithSource(f.Source))
	}
	if changed("sheet") {
		opts = append(opts, sync.WithSheets(f.Sheets...))
	}
	if changed("primary-sheet") {
		opts = append(opts, sync.WithPrimarySheet(f.PrimarySheet))
	}
	if changed("output") {
		opts = append(opts, sync.WithOutputPath(f.Output))
	}
	if changed("manifest") {
		opts = append(opts, sync.WithManifestPath(f.Manifest))
	}
	if changed("dry-run") {
		opts = append(opts, sync.WithDryRun(f.DryRun))
	}
	if changed("timeout") {
		opts = append(opts, sync.WithTimeout(f.Timeout))
	}
	return opts, nil
}

func run(cmd *cobra.Command, app application.Application, opts []sync.Option) error {
	client, err := app.Client()
	if err != nil {
		return err
	}

	result, err := client.Import(cmd.Context(), opts...)
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat(), app.Stderr())
	return output.FormatResult(app.Stderr(), format, result)
}
