// Package state owns the canonical on-disk shape of the budget document and
// the single funnel through which every mutation becomes durable.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"carfund/internal/core"
	"carfund/internal/storage"
)

// LocalAccount keys the document used while no account is signed in.
const LocalAccount = "local"

// SaveListener is notified after a local save has completed. Listeners must
// not block; sync scheduling happens here.
type SaveListener func(accountID string, doc core.StateDocument)

// Store loads, normalizes and saves state documents. All balances and ledger
// mutations go through Save; no other component writes storage directly.
type Store struct {
	repo storage.Repository
	now  func() time.Time

	mu        sync.Mutex
	listeners []SaveListener
}

type Option func(*Store)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(repo storage.Repository, opts ...Option) *Store {
	s := &Store{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnSave registers a listener invoked after every successful Save. A
// pure-local deployment simply registers none.
func (s *Store) OnSave(fn SaveListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load reads the persisted document for the account. A missing row yields a
// fresh default document (cash seeded from starting savings), persisted
// before returning. Unparseable bytes are discarded and replaced with
// defaults; this silent repair is a known data-loss surface, preferred over
// refusing to start.
func (s *Store) Load(ctx context.Context, accountID string) (core.StateDocument, error) {
	rec, err := s.repo.Get(ctx, accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.createFresh(ctx, accountID)
	}
	if err != nil {
		return core.StateDocument{}, fmt.Errorf("load state: %w", err)
	}

	doc, err := core.Decode(rec.Document, s.now())
	if err != nil {
		slog.WarnContext(ctx, "Discarding corrupt state document, recreating defaults",
			"account_id", accountID, "error", err)
		return s.createFresh(ctx, accountID)
	}
	return doc, nil
}

// Save normalizes the document, stamps meta.lastModified with the current
// time, writes it and notifies save listeners. Listeners run synchronously
// but only schedule work, so the save path never blocks on the network.
func (s *Store) Save(ctx context.Context, accountID string, doc core.StateDocument) (core.StateDocument, error) {
	now := s.now()
	doc = core.Normalize(doc, now)
	doc.Meta.LastModified = now.UnixMilli()

	if err := s.write(ctx, accountID, doc); err != nil {
		return core.StateDocument{}, err
	}

	s.notify(accountID, doc)
	return doc, nil
}

// Replace overwrites the stored document without re-stamping its
// modification time and without notifying listeners. This is the pull path:
// a document adopted from the cloud keeps the cloud's timestamp, otherwise
// the next comparison would see local as newer and push it straight back.
func (s *Store) Replace(ctx context.Context, accountID string, doc core.StateDocument) (core.StateDocument, error) {
	doc = core.Normalize(doc, s.now())
	if err := s.write(ctx, accountID, doc); err != nil {
		return core.StateDocument{}, err
	}
	return doc, nil
}

// ResetAll erases the persisted document unconditionally. The next Load
// recreates defaults. Confirming intent is the caller's job.
func (s *Store) ResetAll(ctx context.Context, accountID string) error {
	if err := s.repo.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	return nil
}

// createFresh persists pristine defaults through the Save funnel, so fresh
// creation (first run, corrupt-document repair, post-reset reload) schedules
// a sync push like any other mutation.
func (s *Store) createFresh(ctx context.Context, accountID string) (core.StateDocument, error) {
	return s.Save(ctx, accountID, core.NewDocument(s.now()))
}

func (s *Store) write(ctx context.Context, accountID string, doc core.StateDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	rec := storage.Record{
		AccountID:    accountID,
		Document:     data,
		LastModified: doc.Meta.LastModified,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *Store) notify(accountID string, doc core.StateDocument) {
	s.mu.Lock()
	listeners := append([]SaveListener(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(accountID, doc)
	}
}
