// Package reconciler computes which tasks an import creates, updates and
// soft-deletes. It compares the tagged rows of the current run against the
// existing-record index and the tags of the previous run, and resolves the
// control document reference. It never touches the store itself.
package reconciler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/classify"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/render"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/tags"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Reconciler turns one run's rows into a Plan.
type Reconciler interface {
	// Reconcile plans the actions of a run. It fails only on malformed input.
	Reconcile(ctx context.Context, in Input) (*Plan, error)
}

// SheetInput is one classified sheet of the current run.
type SheetInput struct {
	Name string
	Kind classify.Kind

	// Records holds the extracted rows of a table sheet.
	Records []fields.Record

	// Sheet holds the raw content of a reference sheet.
	Sheet *workbook.Sheet
}

// Input is everything a run reconciles against.
type Input struct {
	// SourceFile is the workbook name written into notes and documents.
	SourceFile string
	Sheets     []SheetInput

	// Index maps tags to existing records. Nil means nothing exists yet.
	Index *store.Index

	// Previous is the manifest of the last run. Nil means no previous run.
	Previous *manifest.Manifest

	// Partial marks a run over a subset of the workbook's sheets. Previous
	// tags of sheets not in Sheets are carried instead of reconciled.
	Partial bool
}

// inScope reports whether a previous tag belongs to a sheet of this run.
func (in Input) inScope(t tags.Tag) bool {
	if !in.Partial {
		return true
	}
	for _, s := range in.Sheets {
		if tags.NormalizeSheet(s.Name) == t.Sheet() {
			return true
		}
	}
	return false
}

// Validate checks the input shape.
func (in Input) Validate() error {
	seen := make(map[string]bool, len(in.Sheets))
	for _, s := range in.Sheets {
		if s.Name == "" {
			return errors.NewValidationError("sheets", s.Name, "sheet name cannot be empty")
		}
		if seen[s.Name] {
			return errors.NewValidationError("sheets", s.Name, "duplicate sheet")
		}
		seen[s.Name] = true
		if s.Kind == classify.Reference && s.Sheet == nil {
			return errors.NewValidationError("sheets", s.Name, "reference sheet has no content")
		}
	}
	return nil
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	strategy Strategy
	options  *options
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		strategy: NewStrategy(options.mode),
		options:  options,
	}, nil
}

// reconcileContext holds shared state for one Reconcile call.
type reconcileContext struct {
	input    Input
	plan     *Plan
	seen     *tags.Set
	payloads payloads
	logger   *zerolog.Logger
}

// Reconcile performs reconciliation with clean step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, in Input) (*Plan, error) {
	// Step 1: Validate input and set up the plan
	if err := in.Validate(); err != nil {
		return nil, err
	}
	rctx := r.initialize(ctx, in)

	// Step 2: Plan every sheet in workbook order
	for _, sheet := range in.Sheets {
		rctx.plan.Sheets = append(rctx.plan.Sheets, r.reconcileSheet(rctx, sheet))
	}

	// Step 3: Carry out-of-scope tags, soft-delete the ones that vanished
	removed := r.splitPrevious(rctx)
	if r.strategy.SoftDeletes() {
		r.reconcileRemoved(rctx, removed)
	}

	// Step 4: Resolve the control document
	rctx.plan.Control = r.control(rctx)
	rctx.plan.Seen = rctx.seen.Slice()

	totals := rctx.plan.Totals()
	rctx.logger.Info().
		Int("created", totals.Created).
		Int("updated", totals.Updated).
		Int("soft_deleted", totals.SoftDeleted).
		Int("references", totals.References).
		Int("carried", len(rctx.plan.Carried)).
		Str("control_origin", string(rctx.plan.Control.Origin)).
		Msg("Reconciliation planned")

	return rctx.plan, nil
}

// initialize sets up reconciliation context.
func (r *reconciler) initialize(ctx context.Context, in Input) *reconcileContext {
	logger := logging.FromContext(ctx).With().
		Bool("timeline_sync", r.options.timelineSync).
		Logger()

	return &reconcileContext{
		input: in,
		plan: &Plan{
			Mode:         r.options.mode,
			TimelineSync: r.options.timelineSync,
			Profile:      r.options.profile,
			GeneratedAt:  r.options.clock(),
		},
		seen: tags.NewSet(),
		payloads: payloads{
			profile:      r.options.profile,
			sourceFile:   in.SourceFile,
			timelineSync: r.options.timelineSync,
		},
		logger: &logger,
	}
}

// reconcileSheet plans the actions of one sheet.
func (r *reconciler) reconcileSheet(rctx *reconcileContext, sheet SheetInput) *SheetPlan {
	sp := &SheetPlan{Name: sheet.Name, Kind: sheet.Kind}

	if sheet.Kind == classify.Reference {
		// Reference sheets are snapshots: one new document every run.
		sp.Actions = append(sp.Actions, actions.NewDocCreate("",
			render.ReferenceTitle(sheet.Name, rctx.plan.Profile.ReferenceSuffix),
			render.ReferenceDoc(rctx.plan.Profile.ProjectMarker, rctx.input.SourceFile, sheet.Sheet),
		))
		return sp
	}

	for _, rec := range sheet.Records {
		if !rctx.seen.Add(rec.Tag) {
			rctx.plan.Skipped++
			rctx.logger.Warn().
				Str("sheet", sheet.Name).
				Str("tag", rec.Tag.String()).
				Msg("Skipping row whose tag collides with an earlier sheet")
			continue
		}

		if id, ok := r.strategy.Resolve(rec.Tag, rctx.input.Index); ok {
			sp.Actions = append(sp.Actions, rctx.payloads.update(id, rec))
			sp.Updated++
			continue
		}
		sp.Actions = append(sp.Actions, rctx.payloads.create(rec))
		sp.Created++
	}

	rctx.logger.Debug().
		Str("sheet", sheet.Name).
		Int("rows", len(sheet.Records)).
		Int("created", sp.Created).
		Int("updated", sp.Updated).
		Msg("Planned sheet")

	return sp
}

// splitPrevious returns the previous tags missing from this run, in
// previous-manifest order, and records out-of-scope ones as carried.
func (r *reconciler) splitPrevious(rctx *reconcileContext) []tags.Tag {
	var removed []tags.Tag
	for _, t := range rctx.input.Previous.Tags().Difference(rctx.seen) {
		if rctx.input.inScope(t) {
			removed = append(removed, t)
			continue
		}
		rctx.plan.Carried = append(rctx.plan.Carried, t)
	}
	return removed
}

// reconcileRemoved soft-deletes removed tags that still resolve to a record.
func (r *reconciler) reconcileRemoved(rctx *reconcileContext, removed []tags.Tag) {
	at := rctx.plan.GeneratedAt

	for _, t := range removed {
		id, ok := rctx.input.Index.Lookup(t)
		if !ok {
			continue
		}
		rctx.plan.SoftDeletes = append(rctx.plan.SoftDeletes, softDelete(id, at))

		sp, ok := rctx.plan.sheetForTag(t)
		if !ok {
			sp = &SheetPlan{Name: t.Sheet(), Kind: classify.Table, Absent: true}
			rctx.plan.Sheets = append(rctx.plan.Sheets, sp)
		}
		sp.SoftDeleted++
	}

	if len(removed) > 0 {
		rctx.logger.Info().
			Int("removed", len(removed)).
			Int("soft_deleted", len(rctx.plan.SoftDeletes)).
			Msg("Planned soft-deletes")
	}
}

// control resolves the control document: store first, manifest second,
// otherwise a new id.
func (r *reconciler) control(rctx *reconcileContext) ControlRef {
	if id := rctx.input.Index.ControlDocID(); id != "" {
		return ControlRef{ID: id, Origin: ControlFromStore}
	}
	if id := rctx.input.Previous.ControlDoc(); id != "" {
		return ControlRef{ID: id, Origin: ControlFromManifest}
	}
	return ControlRef{ID: r.options.newID(), Create: true, Origin: ControlNew}
}
