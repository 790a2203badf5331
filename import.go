package sheetsync

import (
	"context"
	"path/filepath"

	"github.com/agentstation/sheetsync/internal/matcher"
	"github.com/agentstation/sheetsync/pkg/classify"
	"github.com/agentstation/sheetsync/pkg/emitter"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/sync"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

// Compile-time interface check to ensure proper implementation.
var _ Importer = (*client)(nil)

// Importer runs the import pipeline.
type Importer interface {
	// Import reads the source workbook, reconciles it and emits the action
	// batch and manifest. Only invalid options, a missing source and an
	// incomplete write fail the run.
	Import(ctx context.Context, opts ...sync.Option) (*sync.Result, error)
}

// Import runs one import with staged steps.
func (c *client) Import(ctx context.Context, opts ...sync.Option) (*sync.Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse and validate options
	options := sync.Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	runID := c.options.newID()
	ctx = logging.WithRun(ctx, runID)
	ctx = logging.WithMode(ctx, options.Mode.String())
	logger := logging.FromContext(ctx)
	var warnings []string

	// Step 2: Load the workbook; a missing source aborts before any output
	wb, err := c.loadWorkbook(options)
	if err != nil {
		return nil, err
	}
	if options.PrimarySheet != "" {
		if _, ok := wb.Sheet(options.PrimarySheet); !ok {
			return nil, errors.NewSheetError(options.SourcePath, options.PrimarySheet, nil)
		}
	}

	// Step 3: Load the previous manifest; corruption degrades to empty
	previous, err := manifest.Load(options.ManifestPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring unreadable manifest")
		warnings = append(warnings, err.Error())
		c.triggerDegraded(err)
	}

	// Step 4: Classify sheets and extract tagged rows
	sheets, err := readSheets(ctx, wb, options)
	if err != nil {
		return nil, err
	}

	// Step 5: Build the existing-record index; store failures degrade to empty
	index, err := c.buildIndex(ctx, options, previous, sheets)
	if err != nil {
		logger.Warn().Err(err).Msg("Store unavailable, treating every row as new")
		warnings = append(warnings, err.Error())
		c.triggerDegraded(err)
	}

	// Step 6: Reconcile
	r, err := reconciler.New(append(options.ReconcilerOptions(),
		reconciler.WithClock(c.options.clock),
		reconciler.WithIDGenerator(c.options.newID),
	)...)
	if err != nil {
		return nil, err
	}
	sourceFile := sourceName(wb, options)
	plan, err := r.Reconcile(ctx, reconciler.Input{
		SourceFile: sourceFile,
		Sheets:     sheets,
		Index:      index,
		Previous:   previous,
		Partial:    len(options.Sheets) > 0,
	})
	if err != nil {
		return nil, err
	}

	// Step 7: Assemble and emit the batch and manifest
	out := emitter.Assemble(plan, emitter.Meta{SourceFile: sourceFile, RunID: runID})
	if err := emitter.Emit(ctx, out, options.EmitOptions(c.output())...); err != nil {
		return nil, err
	}

	// Step 8: Build the result
	result := sync.PlanToResult(plan, out, runID, options)
	result.Warnings = warnings

	logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("soft_deleted", result.SoftDeleted).
		Int("references", result.References).
		Bool("dry_run", result.DryRun).
		Msg("Import completed")

	c.triggerImported(result)
	return result, nil
}

// loadWorkbook returns the injected workbook or opens the source path.
func (c *client) loadWorkbook(options *sync.Options) (*workbook.Workbook, error) {
	if c.options.workbook != nil {
		return c.options.workbook, nil
	}
	return workbook.Open(options.SourcePath)
}

// buildIndex opens the store for this run and resolves the current and
// previous tags. The returned index is never nil.
func (c *client) buildIndex(ctx context.Context, options *sync.Options, previous *manifest.Manifest, sheets []reconciler.SheetInput) (*store.Index, error) {
	s, release, err := c.openRunStore(ctx)
	if err != nil {
		return store.NewIndex(), err
	}
	defer release()
	if s == nil {
		logging.FromContext(ctx).Debug().Msg("No store configured, index is empty")
		return store.NewIndex(), nil
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	candidates := previous.Tags()
	for _, sheet := range sheets {
		for _, rec := range sheet.Records {
			candidates.Add(rec.Tag)
		}
	}

	profile := options.ProfileOrDefault()
	return store.BuildIndex(ctx, s, store.Query{
		ProjectMarker: profile.ProjectMarker,
		ControlMarker: profile.ControlMarker,
		Candidates:    candidates.Slice(),
	})
}

// readSheets classifies the selected sheets and extracts the rows of table
// sheets, applying the priority filter where it is in scope.
func readSheets(ctx context.Context, wb *workbook.Workbook, options *sync.Options) ([]reconciler.SheetInput, error) {
	selected, err := matcher.NewSet(options.Sheets...)
	if err != nil {
		return nil, errors.WrapValidation("Sheets", err)
	}
	priority, err := matcher.NewSet(options.PrioritySheets...)
	if err != nil {
		return nil, errors.WrapValidation("PrioritySheets", err)
	}

	var out []reconciler.SheetInput
	for _, sheet := range wb.Sheets {
		if !selected.Match(sheet.Name) {
			continue
		}
		logger := logging.FromContext(logging.WithSheet(ctx, sheet.Name))

		res := classify.Classify(sheet)
		in := reconciler.SheetInput{Name: sheet.Name, Kind: res.Kind}
		if !res.IsTable() {
			in.Sheet = sheet
			logger.Debug().Str("reason", string(res.Reason)).Msg("Sheet is a reference sheet")
			out = append(out, in)
			continue
		}

		var extractOpts []fields.Option
		if options.PriorityOnly && priority.Match(sheet.Name) {
			extractOpts = append(extractOpts, fields.WithFilter(fields.TierFilter(options.PriorityKeywords...)))
		}
		in.Records = fields.Extract(sheet, res.HeaderRow, res.Headers, extractOpts...)

		logger.Debug().
			Int("header_row", res.HeaderRow).
			Int("records", len(in.Records)).
			Bool("priority_filter", len(extractOpts) > 0).
			Msg("Extracted table sheet")
		out = append(out, in)
	}
	return out, nil
}

// sourceName is the workbook name written into notes and documents.
func sourceName(wb *workbook.Workbook, options *sync.Options) string {
	if wb.Path != "" {
		return filepath.Base(wb.Path)
	}
	return filepath.Base(options.SourcePath)
}
