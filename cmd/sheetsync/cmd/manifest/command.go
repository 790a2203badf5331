// Package manifest provides the manifest command.
package manifest

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	pkgmanifest "github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// NewCommand creates the manifest command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "manifest [path]",
		GroupID: "management",
		Short:   "Show the manifest the last import wrote",
		Long: `Manifest prints the state the next sync run starts from: the control
document reference and the source tags of the last import, grouped by sheet.

A missing manifest prints as empty. A corrupt manifest is an error here,
while an import would log it and start from an empty manifest.`,
		Example: `  sheetsync manifest                          # the configured manifest
  sheetsync manifest out/manifest.json -f yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := sync.Defaults().Apply(app.ImportOptions()...).ManifestPath
			if len(args) == 1 {
				path = args[0]
			}

			m, err := pkgmanifest.Load(path)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat(), app.Stdout())
			return output.FormatManifest(app.Stdout(), format, path, m)
		},
	}
}
