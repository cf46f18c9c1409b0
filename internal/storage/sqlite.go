package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists one state document per account in a local SQLite
// database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, accountID string) (Record, error) {
	const query = `SELECT account_id, document, last_modified FROM account_state WHERE account_id = ?`

	rec := Record{}
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&rec.AccountID, &rec.Document, &rec.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get account state: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO account_state (account_id, document, last_modified, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id) DO UPDATE SET
			document = excluded.document,
			last_modified = excluded.last_modified,
			updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, rec.AccountID, rec.Document, rec.LastModified); err != nil {
		return fmt.Errorf("put account state: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, accountID string) error {
	const query = `DELETE FROM account_state WHERE account_id = ?`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("delete account state: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
