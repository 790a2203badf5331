// Package actions models the mutations an import run requests. Actions are
// data: an external executor applies them to the task store in batch order.
package actions

import (
	"encoding/json"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Kind is the operation an action requests.
type Kind string

// Action kinds, as written to the batch file.
const (
	TaskCreate Kind = "task.create"
	TaskUpdate Kind = "task.update"
	DocCreate  Kind = "doc.create"
	DocUpdate  Kind = "doc.update"
)

// IsCreate reports whether the kind creates a record.
func (k Kind) IsCreate() bool {
	return k == TaskCreate || k == DocCreate
}

// IsDocument reports whether the kind targets a document.
func (k Kind) IsDocument() bool {
	return k == DocCreate || k == DocUpdate
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case TaskCreate, TaskUpdate, DocCreate, DocUpdate:
		return true
	}
	return false
}

// Payload is the field set an action carries.
type Payload interface {
	// TargetID is the record id for updates, "" for creates without a
	// pre-assigned id.
	TargetID() string
}

// Task is the payload of task actions. Optional workflow fields are
// omitted when unset so updates leave them untouched at the destination.
type Task struct {
	ID             string  `json:"id,omitempty"`
	Title          string  `json:"title,omitempty"`
	Workspace      string  `json:"workspace,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Status         string  `json:"status,omitempty"`
	ScheduleBucket string  `json:"schedule_bucket,omitempty"`
	Priority       *int    `json:"priority,omitempty"`
	ScheduledDate  *string `json:"scheduled_date,omitempty"`
	AppendNotes    string  `json:"append_notes,omitempty"`
}

// TargetID implements Payload.
func (t *Task) TargetID() string { return t.ID }

// Document is the payload of document actions.
type Document struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	ContentMD string `json:"content_md"`
}

// TargetID implements Payload.
func (d *Document) TargetID() string { return d.ID }

// Action is one requested mutation.
type Action struct {
	Type   Kind    `json:"type"`
	SaveAs string  `json:"saveAs,omitempty"`
	Data   Payload `json:"data"`
}

// Task returns the task payload, or nil for document actions.
func (a Action) Task() *Task {
	t, _ := a.Data.(*Task)
	return t
}

// Document returns the document payload, or nil for task actions.
func (a Action) Document() *Document {
	d, _ := a.Data.(*Document)
	return d
}

// UnmarshalJSON decodes the payload according to the action type.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Kind            `json:"type"`
		SaveAs string          `json:"saveAs"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return errors.NewValidationError("type", raw.Type, "unknown action type")
	}

	var payload Payload
	if raw.Type.IsDocument() {
		payload = &Document{}
	} else {
		payload = &Task{}
	}
	if len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, payload); err != nil {
			return err
		}
	}

	*a = Action{Type: raw.Type, SaveAs: raw.SaveAs, Data: payload}
	return nil
}

// NewTaskCreate builds a task.create action.
func NewTaskCreate(t Task) Action {
	t.ID = ""
	return Action{Type: TaskCreate, Data: &t}
}

// NewTaskUpdate builds a task.update action addressed at id.
func NewTaskUpdate(id string, t Task) Action {
	t.ID = id
	return Action{Type: TaskUpdate, Data: &t}
}

// NewDocCreate builds a doc.create action. id may pre-assign the document id.
func NewDocCreate(id, title, content string) Action {
	return Action{Type: DocCreate, Data: &Document{ID: id, Title: title, ContentMD: content}}
}

// NewDocUpdate builds a doc.update action addressed at id.
func NewDocUpdate(id, title, content string) Action {
	return Action{Type: DocUpdate, Data: &Document{ID: id, Title: title, ContentMD: content}}
}
