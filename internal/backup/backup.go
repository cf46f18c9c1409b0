// Package backup exports the full state document to a portable JSON file and
// imports such a file back, replacing local state wholesale.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carfund/internal/core"
	"carfund/internal/state"
)

// Filename is the suggested download name for exports.
const Filename = "car-fund-tracker-backup.json"

// PushScheduler is the optional hook that queues a cloud push after a
// successful import. The sync coordinator satisfies it.
type PushScheduler interface {
	SchedulePush()
}

// Service handles export and import for one store.
type Service struct {
	store     *state.Store
	scheduler PushScheduler // may be nil in a pure-local deployment
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *state.Store, scheduler PushScheduler, opts ...Option) *Service {
	s := &Service{store: store, scheduler: scheduler, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export serializes the account's document in its normalized form.
func (s *Service) Export(ctx context.Context, accountID string) ([]byte, error) {
	doc, err := s.store.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Import parses a user-supplied document, normalizes it and replaces local
// storage wholesale, then schedules a sync push. Invalid input is rejected
// and existing state is left untouched.
func (s *Service) Import(ctx context.Context, accountID string, data []byte) (core.StateDocument, error) {
	doc, err := core.Decode(data, s.now())
	if err != nil {
		return core.StateDocument{}, fmt.Errorf("import rejected: %w", err)
	}

	replaced, err := s.store.Replace(ctx, accountID, doc)
	if err != nil {
		return core.StateDocument{}, err
	}

	if s.scheduler != nil {
		s.scheduler.SchedulePush()
	}
	return replaced, nil
}
