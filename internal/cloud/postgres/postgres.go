// Package postgres implements the RemoteStore against a Postgres table with
// one row per account and upsert semantics.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"carfund/internal/cloud"
)

type Store struct {
	db *sql.DB
}

// New opens a connection to the remote database.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, mainly for tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the user_state table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS user_state (
			account_id TEXT PRIMARY KEY,
			state_document JSONB NOT NULL,
			server_updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure user_state schema: %w", err)
	}
	return nil
}

func (s *Store) Fetch(ctx context.Context, accountID string) (cloud.RemoteDocument, error) {
	const query = `SELECT account_id, state_document, server_updated_at FROM user_state WHERE account_id = $1`

	rec := cloud.RemoteDocument{}
	err := s.db.QueryRowContext(ctx, query, accountID).
		Scan(&rec.AccountID, &rec.Document, &rec.ServerUpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cloud.RemoteDocument{}, cloud.ErrRemoteNotFound
	}
	if err != nil {
		return cloud.RemoteDocument{}, fmt.Errorf("fetch user state: %w", err)
	}
	return rec, nil
}

func (s *Store) Upsert(ctx context.Context, accountID string, document []byte) error {
	const query = `
		INSERT INTO user_state (account_id, state_document, server_updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account_id) DO UPDATE SET
			state_document = excluded.state_document,
			server_updated_at = now()`

	if _, err := s.db.ExecContext(ctx, query, accountID, document); err != nil {
		return fmt.Errorf("upsert user state: %w", err)
	}
	return nil
}

var _ cloud.RemoteStore = (*Store)(nil)
