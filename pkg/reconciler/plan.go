package reconciler

import (
	"github.com/agentstation/utc"

	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/classify"
	"github.com/agentstation/sheetsync/pkg/tags"
)

// ControlOrigin records where the control document reference came from.
type ControlOrigin string

const (
	// ControlFromStore means the store holds a document with the control marker.
	ControlFromStore ControlOrigin = "store"
	// ControlFromManifest means the previous manifest carried the reference.
	ControlFromManifest ControlOrigin = "manifest"
	// ControlNew means a new id was assigned for this run.
	ControlNew ControlOrigin = "new"
)

// ControlRef addresses the control document of a run.
type ControlRef struct {
	ID     string
	Create bool
	Origin ControlOrigin
}

// SheetPlan holds the actions and counts of one sheet.
type SheetPlan struct {
	Name    string
	Kind    classify.Kind
	Actions []actions.Action

	Created     int
	Updated     int
	SoftDeleted int

	// Absent is set for sheets that only appear through soft-deleted tags.
	Absent bool
}

// IsReference reports whether the sheet was rendered as a document.
func (s *SheetPlan) IsReference() bool {
	return s.Kind == classify.Reference
}

// Totals sums the counts of a plan.
type Totals struct {
	Created     int
	Updated     int
	SoftDeleted int
	References  int
}

// Plan is the outcome of reconciliation: everything the emitter needs to
// assemble the batch and the next manifest.
type Plan struct {
	Mode         Mode
	TimelineSync bool
	Profile      Profile
	GeneratedAt  utc.Time

	Control ControlRef
	Sheets  []*SheetPlan

	// SoftDeletes are emitted after every sheet action.
	SoftDeletes []actions.Action

	// Seen lists the tags of this run in sheet-then-row order.
	Seen []tags.Tag

	// Carried lists previous tags of sheets outside a partial run. They are
	// neither reconciled nor soft-deleted and stay known to the next run.
	Carried []tags.Tag

	// Skipped counts rows dropped for a tag collision.
	Skipped int
}

// KnownTags returns the tags the next manifest records: this run's tags
// followed by the carried ones.
func (p *Plan) KnownTags() []tags.Tag {
	out := make([]tags.Tag, 0, len(p.Seen)+len(p.Carried))
	out = append(out, p.Seen...)
	return append(out, p.Carried...)
}

// Totals returns the counts across all sheets.
func (p *Plan) Totals() Totals {
	var t Totals
	for _, s := range p.Sheets {
		t.Created += s.Created
		t.Updated += s.Updated
		t.SoftDeleted += s.SoftDeleted
		if s.IsReference() {
			t.References += len(s.Actions)
		}
	}
	return t
}

// Actions returns the row and document actions followed by soft-deletes.
// The control document action is not included.
func (p *Plan) Actions() []actions.Action {
	var out []actions.Action
	for _, s := range p.Sheets {
		out = append(out, s.Actions...)
	}
	return append(out, p.SoftDeletes...)
}

// Sheet returns the plan of the named sheet.
func (p *Plan) Sheet(name string) (*SheetPlan, bool) {
	for _, s := range p.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// sheetForTag finds the sheet a tag was derived from, comparing normalized names.
func (p *Plan) sheetForTag(t tags.Tag) (*SheetPlan, bool) {
	want := t.Sheet()
	for _, s := range p.Sheets {
		if tags.NormalizeSheet(s.Name) == want {
			return s, true
		}
	}
	return nil, false
}
