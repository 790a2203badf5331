// Package store defines the read-only view of the task and document store
// that reconciliation consults, and builds the run-scoped index of existing
// records from it.
package store

import (
	"context"

	"github.com/agentstation/sheetsync/pkg/tags"
)

// Task is a stored task with its free-text notes.
type Task struct {
	ID     string
	Notes  string
	Status string
}

// Document is a stored document with its markdown content.
type Document struct {
	ID      string
	Content string
}

// Store answers the two queries reconciliation needs. Implementations never write.
type Store interface {
	// TasksByMarker returns tasks whose notes contain marker.
	TasksByMarker(ctx context.Context, marker string) ([]Task, error)

	// DocumentByMarker returns the first document whose content contains
	// marker, or errors.ErrNotFound.
	DocumentByMarker(ctx context.Context, marker string) (*Document, error)

	// Close releases the underlying connection.
	Close() error
}

// KeyedStore is a store with a first-class source tag column. BuildIndex
// prefers it over scanning notes.
type KeyedStore interface {
	Store

	// LookupTags maps each known tag to its record id. Unknown tags are absent.
	LookupTags(ctx context.Context, marker string, candidates []tags.Tag) (map[tags.Tag]string, error)
}
