// Package sqlite reads tasks and documents from the SQLite database the
// executor writes to.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/store"
)

const driverName = "sqlite"

const (
	tasksByMarkerQuery = `SELECT id, notes FROM tasks WHERE notes LIKE ? ESCAPE '\' ORDER BY rowid`
	docByMarkerQuery   = `SELECT id, content_md FROM docs WHERE content_md LIKE ? ESCAPE '\' ORDER BY rowid LIMIT 1`
)

// Store is a read-only SQLite view of the task store.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path without creating it. The connection is
// query-only.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewStoreError(driverName, "open", errors.New("storage path is required"))
	}
	cleanPath := filepath.Clean(path)
	if _, err := os.Stat(cleanPath); err != nil {
		return nil, errors.NewStoreError(driverName, "open", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=query_only(1)"
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.NewStoreError(driverName, "open", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.NewStoreError(driverName, "ping", err)
	}
	return New(sqlDB), nil
}

// New wraps an already opened handle.
func New(db *sql.DB) *Store {
	return &Store{sqlDB: db}
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// TasksByMarker implements store.Store.
func (s *Store) TasksByMarker(ctx context.Context, marker string) ([]store.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, tasksByMarkerQuery, likePattern(marker))
	if err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []store.Task
	for rows.Next() {
		var (
			id    string
			notes sql.NullString
		)
		if err := rows.Scan(&id, &notes); err != nil {
			return nil, errors.NewStoreError(driverName, "scan", err)
		}
		tasks = append(tasks, store.Task{ID: id, Notes: notes.String})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	return tasks, nil
}

// DocumentByMarker implements store.Store.
func (s *Store) DocumentByMarker(ctx context.Context, marker string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		id      string
		content sql.NullString
	)
	err := s.sqlDB.QueryRowContext(ctx, docByMarkerQuery, likePattern(marker)).Scan(&id, &content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	return &store.Document{ID: id, Content: content.String}, nil
}

// likePattern wraps marker for a substring LIKE match with escaped wildcards.
func likePattern(marker string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(marker) + "%"
}
