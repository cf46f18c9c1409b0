package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no state row exists for an account.
var ErrNotFound = errors.New("state not found")

// Record is one persisted state document, kept as raw serialized text so the
// normalization funnel stays in one place (the state package).
type Record struct {
	AccountID    string
	Document     []byte
	LastModified int64
}

// Repository is the durable local store port: one row per account, whole
// document read/write, atomic per call.
type Repository interface {
	// Get returns the stored record or ErrNotFound.
	Get(ctx context.Context, accountID string) (Record, error)

	// Put inserts or replaces the record for its account.
	Put(ctx context.Context, rec Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, accountID string) error
}
