package store

import (
	"fmt"

	"github.com/agentstation/sheetsync/pkg/actions"
	"github.com/agentstation/sheetsync/pkg/errors"
)

// Apply replays a batch against the memory store the way an executor
// would. Creates without an id get sequential ids; it returns the ids
// assigned to each action in batch order.
func (m *Memory) Apply(b *actions.Batch) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, b.Len())
	for i, a := range b.Actions {
		id, err := m.apply(a)
		if err != nil {
			return ids, fmt.Errorf("action %d (%s): %w", i, a.Type, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) apply(a actions.Action) (string, error) {
	switch a.Type {
	case actions.TaskCreate:
		t := a.Task()
		m.seq++
		id := fmt.Sprintf("task-%04d", m.seq)
		m.tasks[id] = Task{ID: id, Notes: t.Notes, Status: t.Status}
		return id, nil

	case actions.TaskUpdate:
		t := a.Task()
		cur, ok := m.tasks[t.ID]
		if !ok {
			return "", errors.ErrNotFound
		}
		if t.Notes != "" {
			cur.Notes = t.Notes
		}
		if t.AppendNotes != "" {
			cur.Notes += "\n" + t.AppendNotes
		}
		if t.Status != "" {
			cur.Status = t.Status
		}
		m.tasks[t.ID] = cur
		return t.ID, nil

	case actions.DocCreate:
		d := a.Document()
		id := d.ID
		if id == "" {
			m.seq++
			id = fmt.Sprintf("doc-%04d", m.seq)
		}
		m.docs[id] = Document{ID: id, Content: d.ContentMD}
		return id, nil

	case actions.DocUpdate:
		d := a.Document()
		if _, ok := m.docs[d.ID]; !ok {
			return "", errors.ErrNotFound
		}
		m.docs[d.ID] = Document{ID: d.ID, Content: d.ContentMD}
		return d.ID, nil

	default:
		return "", errors.NewValidationError("type", a.Type, "unknown action type")
	}
}
