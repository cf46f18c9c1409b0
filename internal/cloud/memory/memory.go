// Package memory provides an in-memory RemoteStore used in tests and as a
// stand-in remote when no Postgres endpoint is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"carfund/internal/cloud"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]cloud.RemoteDocument
	now  func() time.Time

	// Upserts counts writes, handy for debounce assertions in tests.
	upserts int
}

func New() *Store {
	return &Store{rows: make(map[string]cloud.RemoteDocument), now: time.Now}
}

func (s *Store) Fetch(_ context.Context, accountID string) (cloud.RemoteDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[accountID]
	if !ok {
		return cloud.RemoteDocument{}, cloud.ErrRemoteNotFound
	}
	rec.Document = append([]byte(nil), rec.Document...)
	return rec, nil
}

func (s *Store) Upsert(_ context.Context, accountID string, document []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	s.rows[accountID] = cloud.RemoteDocument{
		AccountID:       accountID,
		Document:        append([]byte(nil), document...),
		ServerUpdatedAt: s.now(),
	}
	return nil
}

// Upserts returns how many writes have been accepted.
func (s *Store) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// Seed installs a row directly, for tests.
func (s *Store) Seed(accountID string, document []byte, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[accountID] = cloud.RemoteDocument{
		AccountID:       accountID,
		Document:        append([]byte(nil), document...),
		ServerUpdatedAt: updatedAt,
	}
}

var _ cloud.RemoteStore = (*Store)(nil)
