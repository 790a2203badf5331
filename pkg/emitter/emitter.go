// Package emitter assembles a reconciliation plan into the action batch and
// the next manifest, and persists both.
package emitter

import (
	"context"
	"io"
	"os"

	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/render"
)

// Meta is the run metadata shown in the control document.
type Meta struct {
	SourceFile string
	RunID      string
}

// Output is what a run hands to the executor and to the next run.
type Output struct {
	Batch    *actions.Batch
	Manifest *manifest.Manifest
}

// Assemble lays out the batch: the control document first, then sheet
// actions in sheet-then-row order, then soft-deletes. The manifest holds
// exactly the tags of this run.
func Assemble(plan *reconciler.Plan, meta Meta) Output {
	batch := &actions.Batch{}
	batch.Append(ControlAction(plan, meta))
	batch.Append(plan.Actions()...)

	return Output{
		Batch:    batch,
		Manifest: manifest.New(plan.KnownTags(), plan.Control.ID),
	}
}

// ControlAction builds the control document upsert for a plan.
func ControlAction(plan *reconciler.Plan, meta Meta) actions.Action {
	totals := plan.Totals()
	lines := make([]render.SheetLine, 0, len(plan.Sheets))
	for _, s := range plan.Sheets {
		lines = append(lines, render.SheetLine{
			Name:        s.Name,
			Reference:   s.IsReference(),
			Created:     s.Created,
			Updated:     s.Updated,
			SoftDeleted: s.SoftDeleted,
		})
	}

	content := render.ControlDoc(render.Control{
		Title:        plan.Profile.ControlTitle,
		Marker:       plan.Profile.ControlMarker,
		SourceFile:   meta.SourceFile,
		ImportedAt:   plan.GeneratedAt,
		Mode:         plan.Mode.String(),
		RunID:        meta.RunID,
		Created:      totals.Created,
		Updated:      totals.Updated,
		SoftDeleted:  totals.SoftDeleted,
		References:   totals.References,
		Sheets:       lines,
		Instructions: plan.Profile.Instructions,
	})

	if plan.Control.Create {
		a := actions.NewDocCreate(plan.Control.ID, plan.Profile.ControlTitle, content)
		a.SaveAs = constants.ControlDocSaveAs
		return a
	}
	return actions.NewDocUpdate(plan.Control.ID, plan.Profile.ControlTitle, content)
}

// Emit persists out per the options and streams the batch to the
// configured writer. Files are written before anything is streamed so a
// failed write never leaves a streamed batch without its manifest.
func Emit(ctx context.Context, out Output, opts ...Option) error {
	o := Defaults().Apply(opts...)
	logger := logging.FromContext(ctx)

	if !o.DryRun() {
		if err := Write(out, o.PayloadPath(), o.ManifestPath()); err != nil {
			return err
		}
		logger.Info().
			Str("payload", o.PayloadPath()).
			Str("manifest", o.ManifestPath()).
			Int("actions", out.Batch.Len()).
			Msg("Wrote action batch and manifest")
	} else {
		logger.Info().Int("actions", out.Batch.Len()).Msg("Dry run, no files written")
	}

	if w := o.Writer(); w != nil {
		if err := Stream(w, out.Batch); err != nil {
			return err
		}
	}
	return nil
}

// Write stores the batch and the manifest. Both are staged to temp files
// first; if either cannot be staged, neither target is touched. If the
// manifest cannot be moved into place, the previous payload is restored.
func Write(out Output, payloadPath, manifestPath string) error {
	batchData, err := out.Batch.Encode()
	if err != nil {
		return errors.NewWriteError(err, payloadPath, manifestPath)
	}
	manifestData, err := out.Manifest.Encode()
	if err != nil {
		return errors.NewWriteError(err, payloadPath, manifestPath)
	}

	batchTmp, err := manifest.StageFile(payloadPath, batchData)
	if err != nil {
		return errors.NewWriteError(err, payloadPath, manifestPath)
	}
	manifestTmp, err := manifest.StageFile(manifestPath, manifestData)
	if err != nil {
		_ = os.Remove(batchTmp)
		return errors.NewWriteError(err, payloadPath, manifestPath)
	}

	previous, readErr := os.ReadFile(payloadPath)
	hadPrevious := readErr == nil

	if err := os.Rename(batchTmp, payloadPath); err != nil {
		_ = os.Remove(batchTmp)
		_ = os.Remove(manifestTmp)
		return errors.NewWriteError(errors.WrapIO("rename", payloadPath, err), payloadPath, manifestPath)
	}
	if err := os.Rename(manifestTmp, manifestPath); err != nil {
		_ = os.Remove(manifestTmp)
		restorePayload(payloadPath, previous, hadPrevious)
		return errors.NewWriteError(errors.WrapIO("rename", manifestPath, err), payloadPath, manifestPath)
	}
	return nil
}

// restorePayload puts back the payload that preceded a failed write, or
// removes the new one when there was none.
func restorePayload(path string, previous []byte, hadPrevious bool) {
	if !hadPrevious {
		_ = os.Remove(path)
		return
	}
	tmp, err := manifest.StageFile(path, previous)
	if err != nil {
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
	}
}

// Stream writes the encoded batch to w.
func Stream(w io.Writer, b *actions.Batch) error {
	if _, err := b.WriteTo(w); err != nil {
		return errors.WrapIO("write", "", err)
	}
	return nil
}
