// Package postgres reads tasks and documents from a Postgres-backed task
// store that carries a dedicated source_tag column.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/store"
	"github.com/agentstation/sheetsync/pkg/tags"
)

const driverName = "postgres"

const (
	tasksByMarkerQuery = `SELECT id::text, coalesce(notes, '') FROM tasks WHERE strpos(notes, $1) > 0 ORDER BY created_at, id`
	lookupTagsQuery    = `SELECT source_tag, id::text FROM tasks WHERE source_tag = ANY($1) AND ($2 = '' OR strpos(notes, $2) > 0) ORDER BY created_at, id`
	docByMarkerQuery   = `SELECT id::text, coalesce(content_md, '') FROM docs WHERE strpos(content_md, $1) > 0 ORDER BY created_at, id LIMIT 1`
)

// DBTX is the query surface used by the store.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store is a read-only Postgres view of the task store.
type Store struct {
	db    DBTX
	close func()
}

var _ store.KeyedStore = (*Store)(nil)

// Open connects to the database at url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.NewStoreError(driverName, "open", errors.New("database url is required"))
	}

	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.NewStoreError(driverName, "open", err)
	}
	poolConfig.MaxConns = 2
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.NewStoreError(driverName, "open", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewStoreError(driverName, "ping", err)
	}

	return &Store{db: pool, close: pool.Close}, nil
}

// New wraps an existing connection or pool. The caller keeps ownership.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Close releases the pool when the store opened it.
func (s *Store) Close() error {
	if s != nil && s.close != nil {
		s.close()
	}
	return nil
}

// TasksByMarker implements store.Store.
func (s *Store) TasksByMarker(ctx context.Context, marker string) ([]store.Task, error) {
	rows, err := s.db.Query(ctx, tasksByMarkerQuery, marker)
	if err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	defer rows.Close()

	var tasks []store.Task
	for rows.Next() {
		var t store.Task
		if err := rows.Scan(&t.ID, &t.Notes); err != nil {
			return nil, errors.NewStoreError(driverName, "scan", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	return tasks, nil
}

// LookupTags implements store.KeyedStore.
func (s *Store) LookupTags(ctx context.Context, marker string, candidates []tags.Tag) (map[tags.Tag]string, error) {
	out := make(map[tags.Tag]string, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}

	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = c.String()
	}

	rows, err := s.db.Query(ctx, lookupTagsQuery, keys, marker)
	if err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tag, id string
		if err := rows.Scan(&tag, &id); err != nil {
			return nil, errors.NewStoreError(driverName, "scan", err)
		}
		out[tags.Tag(tag)] = id
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	return out, nil
}

// DocumentByMarker implements store.Store.
func (s *Store) DocumentByMarker(ctx context.Context, marker string) (*store.Document, error) {
	var doc store.Document
	err := s.db.QueryRow(ctx, docByMarkerQuery, marker).Scan(&doc.ID, &doc.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.NewStoreError(driverName, "query", err)
	}
	return &doc, nil
}
