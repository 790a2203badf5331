package sync

import (
	"fmt"
	"strings"

	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/emitter"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// Result represents the complete result of an import run.
type Result struct {
	RunID  string          `json:"run_id" yaml:"run_id"`
	Mode   reconciler.Mode `json:"mode" yaml:"mode"`
	Source string          `json:"source" yaml:"source"`

	// Overall statistics
	Created      int `json:"created" yaml:"created"`             // Tasks created
	Updated      int `json:"updated" yaml:"updated"`             // Tasks updated
	SoftDeleted  int `json:"soft_deleted" yaml:"soft_deleted"`   // Tasks closed because their row vanished
	References   int `json:"references" yaml:"references"`       // Reference documents created
	TotalChanges int `json:"total_changes" yaml:"total_changes"` // Sum of the above
	Skipped      int `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Control document
	ControlDocID   string `json:"control_doc_id" yaml:"control_doc_id"`
	ControlCreated bool   `json:"control_created" yaml:"control_created"`

	SheetResults []*SheetResult `json:"sheets" yaml:"sheets"`

	// Operation metadata
	DryRun       bool     `json:"dry_run" yaml:"dry_run"`
	PayloadPath  string   `json:"payload_path,omitempty" yaml:"payload_path,omitempty"`
	ManifestPath string   `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Outputs
	Batch    *actions.Batch     `json:"-" yaml:"-"`
	Manifest *manifest.Manifest `json:"-" yaml:"-"`
}

// SheetResult represents import results for a single sheet.
type SheetResult struct {
	Sheet       string `json:"sheet" yaml:"sheet"`
	Kind        string `json:"kind" yaml:"kind"`
	Created     int    `json:"created" yaml:"created"`
	Updated     int    `json:"updated" yaml:"updated"`
	SoftDeleted int    `json:"soft_deleted" yaml:"soft_deleted"`
	Documents   int    `json:"documents" yaml:"documents"`
	Absent      bool   `json:"absent,omitempty" yaml:"absent,omitempty"` // Only seen through soft-deletes
}

// HasChanges returns true if the run emitted any row or document action.
func (sr *Result) HasChanges() bool {
	return sr.TotalChanges > 0
}

// HasChanges returns true if the sheet result contains any changes.
func (ssr *SheetResult) HasChanges() bool {
	return ssr.Created > 0 || ssr.Updated > 0 || ssr.SoftDeleted > 0 || ssr.Documents > 0
}

// Summary returns a human-readable summary of the import result.
func (sr *Result) Summary() string {
	if !sr.HasChanges() {
		return fmt.Sprintf("%s: no row actions", strings.ToUpper(sr.Mode.String()))
	}

	summary := fmt.Sprintf("%s: %d created, %d updated, %d soft-deleted, %d reference docs across %d sheets",
		strings.ToUpper(sr.Mode.String()), sr.Created, sr.Updated, sr.SoftDeleted, sr.References, len(sr.SheetResults))
	if sr.DryRun {
		summary += " (Dry run)"
	}
	return summary
}

// Summary returns a human-readable summary of the sheet result.
func (ssr *SheetResult) Summary() string {
	if ssr.Kind == "reference" {
		return fmt.Sprintf("%s: created as document", ssr.Sheet)
	}
	if !ssr.HasChanges() {
		return fmt.Sprintf("%s: No changes", ssr.Sheet)
	}
	return fmt.Sprintf("%s: %d created, %d updated, %d soft-deleted",
		ssr.Sheet, ssr.Created, ssr.Updated, ssr.SoftDeleted)
}

// PlanToResult converts a reconciliation plan and its emitted output to a Result.
func PlanToResult(plan *reconciler.Plan, out emitter.Output, runID string, opts *Options) *Result {
	totals := plan.Totals()
	result := &Result{
		RunID:          runID,
		Mode:           plan.Mode,
		Source:         opts.SourcePath,
		Created:        totals.Created,
		Updated:        totals.Updated,
		SoftDeleted:    totals.SoftDeleted,
		References:     totals.References,
		TotalChanges:   totals.Created + totals.Updated + totals.SoftDeleted + totals.References,
		Skipped:        plan.Skipped,
		ControlDocID:   plan.Control.ID,
		ControlCreated: plan.Control.Create,
		DryRun:         opts.DryRun,
		Batch:          out.Batch,
		Manifest:       out.Manifest,
	}
	if !opts.DryRun {
		result.PayloadPath = opts.OutputPath
		result.ManifestPath = opts.ManifestPath
	}

	for _, s := range plan.Sheets {
		sheet := &SheetResult{
			Sheet:       s.Name,
			Kind:        s.Kind.String(),
			Created:     s.Created,
			Updated:     s.Updated,
			SoftDeleted: s.SoftDeleted,
			Absent:      s.Absent,
		}
		if s.IsReference() {
			sheet.Documents = len(s.Actions)
		}
		result.SheetResults = append(result.SheetResults, sheet)
	}

	return result
}
