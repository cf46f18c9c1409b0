// Package memory provides an in-memory Repository used in tests and as the
// zero-setup local backend.
package memory

import (
	"context"
	"sync"

	"carfund/internal/storage"
)

type Repository struct {
	mu   sync.Mutex
	rows map[string]storage.Record
}

func New() *Repository {
	return &Repository{rows: make(map[string]storage.Record)}
}

func (r *Repository) Get(_ context.Context, accountID string) (storage.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[accountID]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	doc := append([]byte(nil), rec.Document...)
	rec.Document = doc
	return rec, nil
}

func (r *Repository) Put(_ context.Context, rec storage.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Document = append([]byte(nil), rec.Document...)
	r.rows[rec.AccountID] = rec
	return nil
}

func (r *Repository) Delete(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, accountID)
	return nil
}

var _ storage.Repository = (*Repository)(nil)
