// Package cloud reconciles the local state document with its remote copy.
// The protocol is last-writer-wins on meta.lastModified: whole documents are
// replaced, never merged.
package cloud

import (
	"context"
	"errors"
	"time"
)

// ErrRemoteNotFound is returned when no remote row exists for an account yet.
// First-ever sync is not an error; the local document seeds the remote.
var ErrRemoteNotFound = errors.New("no remote state")

// RemoteDocument is one remote row: the serialized state document keyed by
// account identity, with the server-observed update time.
type RemoteDocument struct {
	AccountID       string
	Document        []byte
	ServerUpdatedAt time.Time
}

// RemoteStore is the remote mirror port: one logical table keyed by account
// identity with insert-or-replace semantics.
type RemoteStore interface {
	// Fetch returns the stored row or ErrRemoteNotFound.
	Fetch(ctx context.Context, accountID string) (RemoteDocument, error)

	// Upsert inserts or replaces the row for the account, stamping a
	// server-observed update time.
	Upsert(ctx context.Context, accountID string, document []byte) error
}
