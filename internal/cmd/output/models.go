package output

import (
	"fmt"
	"io"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/internal/cmd/emoji"
	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// FormatResult writes an import result. Tables get the summary line, any
// warnings and the per-sheet breakdown.
func FormatResult(w io.Writer, format Format, result *sync.Result) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, result)
	}

	if _, err := fmt.Fprintln(w, result.Summary()); err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		if _, err := fmt.Fprintf(w, "%s %s\n", emoji.Warning, warning); err != nil {
			return err
		}
	}
	if err := NewFormatter(format).Format(w, table.ResultToTableData(result)); err != nil {
		return err
	}

	control := "updated"
	if result.ControlCreated {
		control = "created"
	}
	if _, err := fmt.Fprintf(w, "%s control document %s (%s)\n", emoji.Info, result.ControlDocID, control); err != nil {
		return err
	}
	if result.DryRun {
		_, err := fmt.Fprintf(w, "%s dry run, no files written\n", emoji.Optional)
		return err
	}
	_, err := fmt.Fprintf(w, "%s wrote %s and %s\n", emoji.Success, result.PayloadPath, result.ManifestPath)
	return err
}

// FormatInspection writes a workbook inspection.
func FormatInspection(w io.Writer, format Format, insp *sheetsync.Inspection) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, insp)
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", emoji.Info, insp.Source); err != nil {
		return err
	}
	return NewFormatter(format).Format(w, table.InspectionToTableData(insp, format == FormatWide))
}

// ManifestView is the printable form of a manifest.
type ManifestView struct {
	Path         string           `json:"path" yaml:"path"`
	ControlDocID string           `json:"control_doc_id" yaml:"control_doc_id"`
	TagCount     int              `json:"tag_count" yaml:"tag_count"`
	Sheets       []table.TagGroup `json:"sheets" yaml:"sheets"`
}

// NewManifestView summarizes m as loaded from path.
func NewManifestView(path string, m *manifest.Manifest) ManifestView {
	return ManifestView{
		Path:         path,
		ControlDocID: m.ControlDoc(),
		TagCount:     len(m.SourceTags),
		Sheets:       table.GroupTags(m),
	}
}

// FormatManifest writes a manifest summary.
func FormatManifest(w io.Writer, format Format, path string, m *manifest.Manifest) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, NewManifestView(path, m))
	}

	control := m.ControlDoc()
	if control == "" {
		control = emoji.Optional
	}
	if _, err := fmt.Fprintf(w, "%s %s: %d tags, control document %s\n", emoji.Info, path, len(m.SourceTags), control); err != nil {
		return err
	}
	return NewFormatter(format).Format(w, table.ManifestToTableData(m))
}
