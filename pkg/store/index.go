package store

import (
	"context"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
	"github.com/agentstation/sheetsync/pkg/tags"
)

// Index maps source tags to existing record ids for one run.
type Index struct {
	ids          map[tags.Tag]string
	controlDocID string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{ids: make(map[tags.Tag]string)}
}

// Set records that tag t belongs to record id. A later Set for the same tag wins.
func (x *Index) Set(t tags.Tag, id string) {
	x.ids[t] = id
}

// Lookup returns the record id of tag t.
func (x *Index) Lookup(t tags.Tag) (string, bool) {
	if x == nil {
		return "", false
	}
	id, ok := x.ids[t]
	return id, ok
}

// Len returns the number of indexed tags.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.ids)
}

// ControlDocID returns the control document found in the store, "" if none.
func (x *Index) ControlDocID() string {
	if x == nil {
		return ""
	}
	return x.controlDocID
}

// SetControlDocID records the control document found in the store.
func (x *Index) SetControlDocID(id string) {
	x.controlDocID = id
}

// Query selects what BuildIndex looks for.
type Query struct {
	ProjectMarker string     // marker embedded in every imported task's notes
	ControlMarker string     // marker embedded in the control document
	Candidates    []tags.Tag // tags a keyed store should resolve
}

// BuildIndex runs the store lookups once. Any store failure degrades to an
// empty index returned together with the soft error, so callers can log it
// and continue treating every row as new.
func BuildIndex(ctx context.Context, s Store, q Query) (*Index, error) {
	idx := NewIndex()
	if s == nil {
		return idx, nil
	}
	logger := logging.FromContext(ctx)

	if keyed, ok := s.(KeyedStore); ok {
		ids, err := keyed.LookupTags(ctx, q.ProjectMarker, q.Candidates)
		if err != nil {
			return NewIndex(), soften(err)
		}
		for t, id := range ids {
			idx.Set(t, id)
		}
	} else {
		tasks, err := s.TasksByMarker(ctx, q.ProjectMarker)
		if err != nil {
			return NewIndex(), soften(err)
		}
		for _, task := range tasks {
			if t, ok := tags.Find(task.Notes); ok {
				idx.Set(t, task.ID)
			}
		}
	}

	if q.ControlMarker != "" {
		doc, err := s.DocumentByMarker(ctx, q.ControlMarker)
		switch {
		case err == nil:
			idx.SetControlDocID(doc.ID)
		case errors.IsNotFound(err):
		default:
			return NewIndex(), soften(err)
		}
	}

	logger.Debug().
		Int("indexed_tags", idx.Len()).
		Str("control_doc_id", idx.ControlDocID()).
		Msg("Built existing-record index")

	return idx, nil
}

// soften makes sure a store failure is classified as a soft condition.
func soften(err error) error {
	if errors.IsSoft(err) {
		return err
	}
	return errors.NewStoreError("store", "query", err)
}
