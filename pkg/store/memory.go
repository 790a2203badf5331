package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Memory is an in-process store. It backs tests and dry runs that replay a
// batch against a simulated destination.
type Memory struct {
	mu     sync.RWMutex
	tasks  map[string]Task
	docs   map[string]Document
	failOn error
	seq    int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tasks: make(map[string]Task),
		docs:  make(map[string]Document),
	}
}

// PutTask inserts or replaces a task.
func (m *Memory) PutTask(t Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
}

// PutDocument inserts or replaces a document.
func (m *Memory) PutDocument(d Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
}

// Task returns a stored task.
func (m *Memory) Task(id string) (Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

// Document returns a stored document.
func (m *Memory) Document(id string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	return d, ok
}

// Counts returns the number of stored tasks and documents.
func (m *Memory) Counts() (taskCount, docCount int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks), len(m.docs)
}

// FailWith makes every query return err, simulating an unavailable store.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = err
}

// TasksByMarker implements Store. Results are ordered by id.
func (m *Memory) TasksByMarker(ctx context.Context, marker string) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failOn != nil {
		return nil, errors.NewStoreError("memory", "query", m.failOn)
	}

	var out []Task
	for _, t := range m.tasks {
		if strings.Contains(t.Notes, marker) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DocumentByMarker implements Store. The lowest matching id wins.
func (m *Memory) DocumentByMarker(ctx context.Context, marker string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failOn != nil {
		return nil, errors.NewStoreError("memory", "query", m.failOn)
	}

	var found *Document
	for _, d := range m.docs {
		if !strings.Contains(d.Content, marker) {
			continue
		}
		if found == nil || d.ID < found.ID {
			doc := d
			found = &doc
		}
	}
	if found == nil {
		return nil, errors.ErrNotFound
	}
	return found, nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
