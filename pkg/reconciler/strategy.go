package reconciler

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/agentstation/sheetsync/internal/utils/ptr"
	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/fields"
	"github.com/agentstation/sheetsync/pkg/render"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/tags"
)

// Strategy decides how a row's tag is matched against existing records.
type Strategy interface {
	// Mode returns the mode the strategy implements.
	Mode() Mode

	// Resolve returns the existing record id for t and true when the row
	// should update that record instead of creating a new one.
	Resolve(t tags.Tag, idx *store.Index) (string, bool)

	// SoftDeletes reports whether vanished rows are soft-deleted.
	SoftDeletes() bool
}

// NewStrategy returns the strategy for mode.
func NewStrategy(mode Mode) Strategy {
	if mode == ModeSync {
		return syncStrategy{}
	}
	return createStrategy{}
}

// createStrategy never looks at history.
type createStrategy struct{}

func (createStrategy) Mode() Mode { return ModeCreate }

func (createStrategy) Resolve(tags.Tag, *store.Index) (string, bool) { return "", false }

func (createStrategy) SoftDeletes() bool { return false }

// syncStrategy updates every row the index resolves.
type syncStrategy struct{}

func (syncStrategy) Mode() Mode { return ModeSync }

func (syncStrategy) Resolve(t tags.Tag, idx *store.Index) (string, bool) {
	return idx.Lookup(t)
}

func (syncStrategy) SoftDeletes() bool { return true }

// payloads builds task payloads for one run.
type payloads struct {
	profile      Profile
	sourceFile   string
	timelineSync bool
}

// base carries the fields every create and update refreshes.
func (p payloads) base(rec fields.Record) actions.Task {
	return actions.Task{
		Title:     render.TaskTitle(rec),
		Workspace: p.profile.Workspace(rec.Sheet),
		Notes:     render.TaskNotes(p.profile.ProjectMarker, p.sourceFile, rec),
	}
}

// create assigns the initial workflow state from the start date.
func (p payloads) create(rec fields.Record) actions.Action {
	t := p.base(rec)
	start := rec.Get(fields.StartDate)
	t.Status, t.ScheduleBucket = initialState(start)
	t.Priority = ptr.To(constants.DefaultPriority)
	if p.timelineSync && start != "" {
		t.ScheduledDate = ptr.To(scheduledDate(start))
	}
	return actions.NewTaskCreate(t)
}

// update leaves workflow state alone unless timeline sync is on.
func (p payloads) update(id string, rec fields.Record) actions.Action {
	t := p.base(rec)
	if start := rec.Get(fields.StartDate); p.timelineSync && start != "" {
		t.ScheduledDate = ptr.To(scheduledDate(start))
		t.Status, t.ScheduleBucket = initialState(start)
	}
	return actions.NewTaskUpdate(id, t)
}

// softDelete closes the record and appends a removal note.
func softDelete(id string, at utc.Time) actions.Action {
	return actions.NewTaskUpdate(id, actions.Task{
		Status:      constants.StatusDone,
		AppendNotes: fmt.Sprintf("[SYNC] Removed from source on %s", at.Format(render.TimestampLayout)),
	})
}

func initialState(start string) (status, bucket string) {
	if start != "" {
		return constants.StatusPlanned, constants.BucketMorning
	}
	return constants.StatusInbox, constants.BucketNone
}

// scheduledDate keeps the date part of a start date.
func scheduledDate(start string) string {
	if len(start) > 10 {
		return start[:10]
	}
	return start
}
