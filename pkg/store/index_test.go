package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/tags"
)

const (
	project = "project:avaone-q1"
	control = "project:avaone-q1 control-doc"
)

func TestBuildIndexScansNotes(t *testing.T) {
	m := store.NewMemory()
	m.PutTask(store.Task{ID: "t1", Notes: project + "\nxl:file:plan.xlsx\nsrc:xl:Nana_Garden:r2\n"})
	m.PutTask(store.Task{ID: "t2", Notes: project + "\nsrc:xl:Ops:r5"})
	m.PutTask(store.Task{ID: "t3", Notes: project + "\nno tag"})
	m.PutTask(store.Task{ID: "t4", Notes: "other project\nsrc:xl:Ops:r9"})
	m.PutDocument(store.Document{ID: "d1", Content: "# Control\n" + control})

	idx, err := store.BuildIndex(context.Background(), m, store.Query{ProjectMarker: project, ControlMarker: control})
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	id, ok := idx.Lookup("src:xl:Nana_Garden:r2")
	assert.True(t, ok)
	assert.Equal(t, "t1", id)
	_, ok = idx.Lookup("src:xl:Ops:r9")
	assert.False(t, ok, "tasks outside the project are not indexed")
	assert.Equal(t, "d1", idx.ControlDocID())
}

func TestBuildIndexLaterTaskWins(t *testing.T) {
	m := store.NewMemory()
	m.PutTask(store.Task{ID: "a", Notes: project + " src:xl:Ops:r2"})
	m.PutTask(store.Task{ID: "b", Notes: project + " src:xl:Ops:r2"})

	idx, err := store.BuildIndex(context.Background(), m, store.Query{ProjectMarker: project})
	require.NoError(t, err)
	id, _ := idx.Lookup("src:xl:Ops:r2")
	assert.Equal(t, "b", id)
}

func TestBuildIndexNoControlDoc(t *testing.T) {
	idx, err := store.BuildIndex(context.Background(), store.NewMemory(), store.Query{ProjectMarker: project, ControlMarker: control})
	require.NoError(t, err)
	assert.Equal(t, "", idx.ControlDocID())
}

func TestBuildIndexDegrades(t *testing.T) {
	m := store.NewMemory()
	m.PutTask(store.Task{ID: "t1", Notes: project + " src:xl:Ops:r2"})
	m.FailWith(errors.New("database is locked"))

	idx, err := store.BuildIndex(context.Background(), m, store.Query{ProjectMarker: project})
	require.Error(t, err)
	assert.True(t, errors.IsSoft(err))
	require.NotNil(t, idx)
	assert.Equal(t, 0, idx.Len())
}

func TestBuildIndexNilStore(t *testing.T) {
	idx, err := store.BuildIndex(context.Background(), nil, store.Query{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

type keyedStore struct {
	*store.Memory
	ids       map[tags.Tag]string
	requested []tags.Tag
}

func (k *keyedStore) LookupTags(_ context.Context, _ string, candidates []tags.Tag) (map[tags.Tag]string, error) {
	k.requested = candidates
	out := make(map[tags.Tag]string)
	for _, c := range candidates {
		if id, ok := k.ids[c]; ok {
			out[c] = id
		}
	}
	return out, nil
}

func TestBuildIndexPrefersKeyedLookup(t *testing.T) {
	k := &keyedStore{
		Memory: store.NewMemory(),
		ids:    map[tags.Tag]string{"src:xl:Ops:r2": "k2"},
	}
	// a notes-embedded tag must be ignored when the keyed path exists
	k.PutTask(store.Task{ID: "n3", Notes: project + " src:xl:Ops:r3"})

	candidates := []tags.Tag{"src:xl:Ops:r2", "src:xl:Ops:r3"}
	idx, err := store.BuildIndex(context.Background(), k, store.Query{ProjectMarker: project, Candidates: candidates})
	require.NoError(t, err)

	assert.Equal(t, candidates, k.requested)
	assert.Equal(t, 1, idx.Len())
	id, ok := idx.Lookup("src:xl:Ops:r2")
	assert.True(t, ok)
	assert.Equal(t, "k2", id)
}

func TestNilIndex(t *testing.T) {
	var idx *store.Index
	_, ok := idx.Lookup("src:xl:A:r1")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "", idx.ControlDocID())
}
