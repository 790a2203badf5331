package reconciler_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/internal/utils/ptr"
	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/classify"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/manifest"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/tags"
	"github.com/agentstation/sheetsync/pkg/workbook"
)

var fixedNow = utc.New(time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC))

func gardenSheet(rows ...[]any) *workbook.Sheet {
	all := append([][]any{{"Species", "Tier", "Price THB", "Start Date"}}, rows...)
	return workbook.NewSheet("Nana Garden", all...)
}

func defaultGarden() *workbook.Sheet {
	return gardenSheet(
		[]any{"Monstera", "Hero", "1200", "2025-02-01"},
		[]any{"Pothos", "Standard", "300", ""},
		[]any{"Alocasia", "Signature", "900", ""},
	)
}

// sheetsOf classifies and extracts sheets the way an import run does.
func sheetsOf(t *testing.T, sheets ...*workbook.Sheet) []reconciler.SheetInput {
	t.Helper()
	out := make([]reconciler.SheetInput, 0, len(sheets))
	for _, s := range sheets {
		res := classify.Classify(s)
		in := reconciler.SheetInput{Name: s.Name, Kind: res.Kind}
		if res.IsTable() {
			in.Records = fields.Extract(s, res.HeaderRow, res.Headers)
		} else {
			in.Sheet = s
		}
		out = append(out, in)
	}
	return out
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ctrl-%d", n)
	}
}

func newReconciler(t *testing.T, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	base := []reconciler.Option{
		reconciler.WithClock(func() utc.Time { return fixedNow }),
		reconciler.WithIDGenerator(sequentialIDs()),
	}
	r, err := reconciler.New(append(base, opts...)...)
	require.NoError(t, err)
	return r
}

// batchOf lays a plan out in emission order with a stand-in control document.
func batchOf(p *reconciler.Plan) *actions.Batch {
	b := &actions.Batch{}
	content := p.Profile.ControlMarker
	if p.Control.Create {
		b.Append(actions.NewDocCreate(p.Control.ID, p.Profile.ControlTitle, content))
	} else {
		b.Append(actions.NewDocUpdate(p.Control.ID, p.Profile.ControlTitle, content))
	}
	b.Append(p.Actions()...)
	return b
}

// indexOf builds the existing-record index from a store the way a run does.
func indexOf(t *testing.T, m *store.Memory, candidates []tags.Tag) *store.Index {
	t.Helper()
	profile := reconciler.DefaultProfile()
	idx, err := store.BuildIndex(context.Background(), m, store.Query{
		ProjectMarker: profile.ProjectMarker,
		ControlMarker: profile.ControlMarker,
		Candidates:    candidates,
	})
	require.NoError(t, err)
	return idx
}

func TestCreateModeNeverConsultsHistory(t *testing.T) {
	ctx := context.Background()
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeCreate))

	first, err := r.Reconcile(ctx, reconciler.Input{SourceFile: "q1.xlsx", Sheets: sheetsOf(t, defaultGarden())})
	require.NoError(t, err)

	idx := store.NewIndex()
	for i, tag := range first.Seen {
		idx.Set(tag, fmt.Sprintf("task-%d", i))
	}
	second, err := r.Reconcile(ctx, reconciler.Input{
		SourceFile: "q1.xlsx",
		Sheets:     sheetsOf(t, gardenSheet([]any{"Monstera", "Hero", "1200", ""})),
		Index:      idx,
		Previous:   manifest.New(first.Seen, first.Control.ID),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, first.Totals().Created)
	assert.Equal(t, 1, second.Totals().Created)
	assert.Zero(t, second.Totals().Updated)
	assert.Empty(t, second.SoftDeletes, "create mode never soft-deletes")
	for _, a := range second.Actions() {
		assert.Equal(t, actions.TaskCreate, a.Type)
	}
}

func TestCreateModeRepeatedRunsDuplicate(t *testing.T) {
	ctx := context.Background()
	r := newReconciler(t)
	in := reconciler.Input{SourceFile: "q1.xlsx", Sheets: sheetsOf(t, defaultGarden())}

	first, err := r.Reconcile(ctx, in)
	require.NoError(t, err)
	second, err := r.Reconcile(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.Totals(), second.Totals())
	assert.Len(t, second.Actions(), 3)
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))

	first, err := r.Reconcile(ctx, reconciler.Input{
		SourceFile: "q1.xlsx",
		Sheets:     sheetsOf(t, defaultGarden()),
		Index:      indexOf(t, mem, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, first.Totals().Created)
	assert.True(t, first.Control.Create)

	_, err = mem.Apply(batchOf(first))
	require.NoError(t, err)
	prev := manifest.New(first.Seen, first.Control.ID)

	second, err := r.Reconcile(ctx, reconciler.Input{
		SourceFile: "q1.xlsx",
		Sheets:     sheetsOf(t, defaultGarden()),
		Index:      indexOf(t, mem, first.Seen),
		Previous:   prev,
	})
	require.NoError(t, err)

	totals := second.Totals()
	assert.Zero(t, totals.Created)
	assert.Equal(t, 3, totals.Updated)
	assert.Zero(t, totals.SoftDeleted)
	assert.Empty(t, second.SoftDeletes)
	assert.Equal(t, first.Seen, second.Seen, "tags are stable across runs")

	assert.False(t, second.Control.Create)
	assert.Equal(t, first.Control.ID, second.Control.ID)
	assert.Equal(t, reconciler.ControlFromStore, second.Control.Origin)

	for _, a := range second.Actions() {
		require.Equal(t, actions.TaskUpdate, a.Type)
		task := a.Task()
		assert.NotEmpty(t, task.ID)
		assert.Empty(t, task.Status, "workflow state is untouched without timeline sync")
		assert.Nil(t, task.ScheduledDate)
		assert.Nil(t, task.Priority)
	}
}

func TestSyncSoftDeletesVanishedRows(t *testing.T) {
	ctx := context.Background()
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))

	a, b, c := tags.New("Nana Garden", 2), tags.New("Nana Garden", 3), tags.New("Nana Garden", 4)
	idx := store.NewIndex()
	idx.Set(a, "task-a")
	idx.Set(b, "task-b")
	idx.Set(c, "task-c")

	plan, err := r.Reconcile(ctx, reconciler.Input{
		SourceFile: "q1.xlsx",
		Sheets: sheetsOf(t, gardenSheet(
			[]any{"Monstera", "Hero", "1200", ""},
			[]any{"Pothos", "Standard", "300", ""},
		)),
		Index:    idx,
		Previous: manifest.New([]tags.Tag{a, b, c}, ""),
	})
	require.NoError(t, err)

	require.Len(t, plan.SoftDeletes, 1)
	del := plan.SoftDeletes[0]
	assert.Equal(t, actions.TaskUpdate, del.Type)
	assert.Equal(t, "task-c", del.Task().ID)
	assert.Equal(t, "done", del.Task().Status)
	assert.Equal(t, "[SYNC] Removed from source on 2025-01-15 09:30:00", del.Task().AppendNotes)
	assert.Empty(t, del.Task().Notes, "soft-delete keeps the existing notes")

	sp, ok := plan.Sheet("Nana Garden")
	require.True(t, ok)
	assert.Equal(t, 2, sp.Updated)
	assert.Equal(t, 1, sp.SoftDeleted)

	all := plan.Actions()
	assert.Equal(t, del, all[len(all)-1], "soft-deletes come last")
}

func TestSyncSoftDeleteRequiresResolvableRecord(t *testing.T) {
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))
	gone := tags.New("Archive", 7)

	plan, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets:   sheetsOf(t, defaultGarden()),
		Previous: manifest.New([]tags.Tag{gone}, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, plan.SoftDeletes)

	idx := store.NewIndex()
	idx.Set(gone, "task-old")
	plan, err = r.Reconcile(context.Background(), reconciler.Input{
		Sheets:   sheetsOf(t, defaultGarden()),
		Index:    idx,
		Previous: manifest.New([]tags.Tag{gone}, ""),
	})
	require.NoError(t, err)
	require.Len(t, plan.SoftDeletes, 1)

	absent, ok := plan.Sheet("Archive")
	require.True(t, ok, "a sheet that disappeared still gets a summary line")
	assert.True(t, absent.Absent)
	assert.Equal(t, 1, absent.SoftDeleted)
}

func TestPartialRunCarriesOtherSheets(t *testing.T) {
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))

	kept := tags.New("Nana Garden", 2)
	gone := tags.New("Nana Garden", 9)
	other := tags.New("Roadmap", 3)
	idx := store.NewIndex()
	idx.Set(kept, "task-kept")
	idx.Set(gone, "task-gone")
	idx.Set(other, "task-other")

	plan, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets: sheetsOf(t, gardenSheet(
			[]any{"Monstera", "Hero", "1200", ""},
		)),
		Index:    idx,
		Previous: manifest.New([]tags.Tag{other, kept, gone}, ""),
		Partial:  true,
	})
	require.NoError(t, err)

	require.Len(t, plan.SoftDeletes, 1, "only rows of the selected sheets can vanish")
	assert.Equal(t, "task-gone", plan.SoftDeletes[0].Task().ID)
	assert.Equal(t, []tags.Tag{other}, plan.Carried)
	assert.Equal(t, []tags.Tag{kept, other}, plan.KnownTags())

	_, ok := plan.Sheet("Roadmap")
	assert.False(t, ok, "carried sheets get no summary line")
}

func TestFullRunCarriesNothing(t *testing.T) {
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))
	other := tags.New("Roadmap", 3)
	idx := store.NewIndex()
	idx.Set(other, "task-other")

	plan, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets:   sheetsOf(t, defaultGarden()),
		Index:    idx,
		Previous: manifest.New([]tags.Tag{other}, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Carried)
	require.Len(t, plan.SoftDeletes, 1)
	assert.NotContains(t, plan.KnownTags(), other)
}

func TestCreatePayload(t *testing.T) {
	tests := []struct {
		name          string
		timelineSync  bool
		row           []any
		wantStatus    string
		wantBucket    string
		wantScheduled *string
	}{
		{"dated row", false, []any{"Monstera", "Hero", "1200", "2025-02-01"}, "planned", "morning", nil},
		{"dated row with timeline", true, []any{"Monstera", "Hero", "1200", "2025-02-01"}, "planned", "morning", ptr.To("2025-02-01")},
		{"undated row", true, []any{"Pothos", "", "300", ""}, "inbox", "none", nil},
		{"date cell", true, []any{"Fern", "", "", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)}, "planned", "morning", ptr.To("2025-03-04")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReconciler(t, reconciler.WithTimelineSync(tt.timelineSync))
			plan, err := r.Reconcile(context.Background(), reconciler.Input{
				SourceFile: "q1.xlsx",
				Sheets:     sheetsOf(t, gardenSheet(tt.row)),
			})
			require.NoError(t, err)
			require.Len(t, plan.Actions(), 1)

			task := plan.Actions()[0].Task()
			assert.Empty(t, task.ID)
			assert.Equal(t, tt.wantStatus, task.Status)
			assert.Equal(t, tt.wantBucket, task.ScheduleBucket)
			assert.Equal(t, ptr.To(2), task.Priority)
			assert.Equal(t, tt.wantScheduled, task.ScheduledDate)
			assert.Equal(t, "content", task.Workspace)
			assert.Contains(t, task.Notes, "src:xl:Nana_Garden:r2")
			assert.Contains(t, task.Notes, "xl:file:q1.xlsx")
		})
	}
}

func TestUpdateWithTimelineSync(t *testing.T) {
	idx := store.NewIndex()
	idx.Set(tags.New("Nana Garden", 2), "task-1")
	idx.Set(tags.New("Nana Garden", 3), "task-2")

	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync), reconciler.WithTimelineSync(true))
	plan, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets: sheetsOf(t, gardenSheet(
			[]any{"Monstera", "Hero", "1200", "2025-02-01 08:00"},
			[]any{"Pothos", "Standard", "300", ""},
		)),
		Index: idx,
	})
	require.NoError(t, err)
	require.Len(t, plan.Actions(), 2)

	dated := plan.Actions()[0].Task()
	assert.Equal(t, "task-1", dated.ID)
	assert.Equal(t, ptr.To("2025-02-01"), dated.ScheduledDate)
	assert.Equal(t, "planned", dated.Status)
	assert.Equal(t, "morning", dated.ScheduleBucket)
	assert.Nil(t, dated.Priority)

	undated := plan.Actions()[1].Task()
	assert.Equal(t, "task-2", undated.ID)
	assert.Empty(t, undated.Status)
	assert.Nil(t, undated.ScheduledDate)
}

func TestTierFilteredRecords(t *testing.T) {
	sheet := gardenSheet(
		[]any{"Monstera", "Hero Variant", "1200", ""},
		[]any{"Pothos", "Standard", "300", ""},
		[]any{"Alocasia", "SIGNATURE", "900", ""},
	)
	res := classify.Classify(sheet)
	records := fields.Extract(sheet, res.HeaderRow, res.Headers, fields.WithFilter(fields.TierFilter("hero", "signature")))

	r := newReconciler(t)
	plan, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets: []reconciler.SheetInput{{Name: sheet.Name, Kind: classify.Table, Records: records}},
	})
	require.NoError(t, err)

	assert.Equal(t, []tags.Tag{"src:xl:Nana_Garden:r2", "src:xl:Nana_Garden:r4"}, plan.Seen)
	assert.Equal(t, "Nana Garden: Monstera [Tier:Hero Variant]", plan.Actions()[0].Task().Title)
}

func TestReferenceSheetsAlwaysCreate(t *testing.T) {
	notes := workbook.NewSheet("Read Me", []any{"Free-form notes"}, []any{"line two\nwrapped"})

	for _, mode := range []reconciler.Mode{reconciler.ModeCreate, reconciler.ModeSync} {
		t.Run(mode.String(), func(t *testing.T) {
			r := newReconciler(t, reconciler.WithMode(mode))
			for range 2 {
				plan, err := r.Reconcile(context.Background(), reconciler.Input{
					SourceFile: "q1.xlsx",
					Sheets:     sheetsOf(t, notes),
					Previous:   manifest.New(nil, "ctrl-prev"),
				})
				require.NoError(t, err)
				require.Len(t, plan.Actions(), 1)

				doc := plan.Actions()[0]
				assert.Equal(t, actions.DocCreate, doc.Type)
				assert.Empty(t, doc.Document().ID)
				assert.Equal(t, "Reference: Read Me - AVAONE Q1", doc.Document().Title)
				assert.Contains(t, doc.Document().ContentMD, "| line two wrapped |")
				assert.Empty(t, plan.Seen, "reference sheets are not tagged")
				assert.Equal(t, 1, plan.Totals().References)
			}
		})
	}
}

func TestControlResolution(t *testing.T) {
	withStore := store.NewIndex()
	withStore.SetControlDocID("ctrl-store")

	tests := []struct {
		name       string
		index      *store.Index
		previous   *manifest.Manifest
		wantID     string
		wantCreate bool
		wantOrigin reconciler.ControlOrigin
	}{
		{"store wins", withStore, manifest.New(nil, "ctrl-manifest"), "ctrl-store", false, reconciler.ControlFromStore},
		{"manifest fallback", nil, manifest.New(nil, "ctrl-manifest"), "ctrl-manifest", false, reconciler.ControlFromManifest},
		{"first run", nil, nil, "ctrl-1", true, reconciler.ControlNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))
			plan, err := r.Reconcile(context.Background(), reconciler.Input{
				Index:    tt.index,
				Previous: tt.previous,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, plan.Control.ID)
			assert.Equal(t, tt.wantCreate, plan.Control.Create)
			assert.Equal(t, tt.wantOrigin, plan.Control.Origin)
		})
	}
}

func TestControlSingletonAcrossSyncRuns(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	r := newReconciler(t, reconciler.WithMode(reconciler.ModeSync))

	var prev *manifest.Manifest
	var controlID string
	for run := range 4 {
		plan, err := r.Reconcile(ctx, reconciler.Input{
			Sheets:   sheetsOf(t, defaultGarden()),
			Index:    indexOf(t, mem, nil),
			Previous: prev,
		})
		require.NoError(t, err)

		if run == 0 {
			assert.True(t, plan.Control.Create)
			controlID = plan.Control.ID
		} else {
			assert.False(t, plan.Control.Create)
			assert.Equal(t, controlID, plan.Control.ID)
		}

		_, err = mem.Apply(batchOf(plan))
		require.NoError(t, err)
		prev = manifest.New(plan.Seen, plan.Control.ID)
	}

	_, docs := mem.Counts()
	assert.Equal(t, 1, docs)
}

func TestTagCollisionSkipsLaterRow(t *testing.T) {
	a := workbook.NewSheet("Q1 Plan", []any{"Species", "Tier"}, []any{"Monstera", "Hero"})
	b := workbook.NewSheet("Q1_Plan", []any{"Species", "Tier"}, []any{"Pothos", "Hero"})

	r := newReconciler(t)
	plan, err := r.Reconcile(context.Background(), reconciler.Input{Sheets: sheetsOf(t, a, b)})
	require.NoError(t, err)

	assert.Equal(t, 1, plan.Skipped)
	assert.Len(t, plan.Seen, 1)
	assert.Equal(t, 1, plan.Totals().Created)
}

func TestWorkspaceRules(t *testing.T) {
	p := reconciler.DefaultProfile()
	assert.Equal(t, "ops", p.Workspace("Q1 Ops Plan"))
	assert.Equal(t, "avacrm", p.Workspace("AvaCRM leads"))
	assert.Equal(t, "content", p.Workspace("Nana Garden"))
}

func TestInputValidation(t *testing.T) {
	r := newReconciler(t)
	_, err := r.Reconcile(context.Background(), reconciler.Input{
		Sheets: []reconciler.SheetInput{{Name: "Notes", Kind: classify.Reference}},
	})
	assert.True(t, errors.IsValidationError(err))

	_, err = r.Reconcile(context.Background(), reconciler.Input{
		Sheets: []reconciler.SheetInput{{Name: "A", Kind: classify.Table}, {Name: "A", Kind: classify.Table}},
	})
	assert.True(t, errors.IsValidationError(err))
}

func TestOptions(t *testing.T) {
	_, err := reconciler.New(reconciler.WithMode("merge"))
	assert.True(t, errors.IsValidationError(err))

	_, err = reconciler.New(reconciler.WithClock(nil))
	assert.Error(t, err)

	_, err = reconciler.New(reconciler.WithIDGenerator(nil))
	assert.Error(t, err)

	bad := reconciler.DefaultProfile()
	bad.ControlMarker = bad.ProjectMarker
	_, err = reconciler.New(reconciler.WithProfile(bad))
	assert.True(t, errors.IsValidationError(err))

	m, err := reconciler.ParseMode(" SYNC ")
	require.NoError(t, err)
	assert.Equal(t, reconciler.ModeSync, m)

	_, err = reconciler.ParseMode("delete")
	assert.Error(t, err)
}
