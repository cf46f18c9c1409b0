package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carfund/internal/core"
	"carfund/internal/state"
)

// Result is the outcome of a recorded operation.
type Result struct {
	Document core.StateDocument
	Entry    core.LedgerEntry

	// BufferWarning is set when the operation dropped (or kept) the buffer
	// below its target. The operation has still been applied.
	BufferWarning bool
}

// Service ties the pure engine to the state store: load, apply, persist.
type Service struct {
	store *state.Store
	now   func() time.Time
	newID func() string
}

type ServiceOption func(*Service)

// WithServiceClock overrides the time source, mainly for tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides ledger entry id generation, mainly for tests.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) { s.newID = newID }
}

func NewService(store *state.Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record applies op to the account's document and persists the result. A
// declined operation leaves storage untouched and returns the reason.
func (s *Service) Record(ctx context.Context, accountID string, op Operation) (Result, error) {
	doc, err := s.store.Load(ctx, accountID)
	if err != nil {
		return Result{}, err
	}

	warning := WouldBreachBufferTarget(doc, op)

	doc, entry, err := Apply(doc, op, s.newID(), s.now())
	if err != nil {
		return Result{}, err
	}

	saved, err := s.store.Save(ctx, accountID, doc)
	if err != nil {
		return Result{}, fmt.Errorf("persist operation: %w", err)
	}
	return Result{Document: saved, Entry: entry, BufferWarning: warning}, nil
}

// RecordMonthlyCosts applies the composite monthly living costs expense.
func (s *Service) RecordMonthlyCosts(ctx context.Context, accountID string) (Result, error) {
	doc, err := s.store.Load(ctx, accountID)
	if err != nil {
		return Result{}, err
	}
	op, err := MonthlyCostsOperation(doc)
	if err != nil {
		return Result{}, err
	}
	return s.Record(ctx, accountID, op)
}

// RecordHoursWorked converts hours at the configured rate into income.
func (s *Service) RecordHoursWorked(ctx context.Context, accountID string, hours float64) (Result, error) {
	doc, err := s.store.Load(ctx, accountID)
	if err != nil {
		return Result{}, err
	}
	op, err := HoursWorkedOperation(doc, hours)
	if err != nil {
		return Result{}, err
	}
	return s.Record(ctx, accountID, op)
}

// UpdateSettings persists new configuration values.
func (s *Service) UpdateSettings(ctx context.Context, accountID string, settings Settings) (core.StateDocument, error) {
	doc, err := s.store.Load(ctx, accountID)
	if err != nil {
		return core.StateDocument{}, err
	}
	doc = ApplySettings(doc, settings)
	saved, err := s.store.Save(ctx, accountID, doc)
	if err != nil {
		return core.StateDocument{}, fmt.Errorf("persist settings: %w", err)
	}
	return saved, nil
}
