package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"carfund/internal/core"
	"carfund/internal/state"
	"carfund/internal/storage/memory"
)

func testService(t *testing.T) (*Service, *state.Store) {
	t.Helper()
	clock := func() time.Time { return now }
	store := state.NewStore(memory.New(), state.WithClock(clock))
	n := 0
	svc := NewService(store,
		WithServiceClock(clock),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }))
	return svc, store
}

func TestService_RecordPersists(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	res, err := svc.Record(ctx, state.LocalAccount, SalaryOperation(1800))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Document.Cash != 3286 {
		t.Errorf("expected cash 3286, got %v", res.Document.Cash)
	}
	if res.Entry.ID != "id-1" {
		t.Errorf("expected generated entry id, got %q", res.Entry.ID)
	}

	loaded, err := store.Load(ctx, state.LocalAccount)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Cash != 3286 || len(loaded.Entries) != 1 {
		t.Errorf("operation was not persisted: cash %v, %d entries", loaded.Cash, len(loaded.Entries))
	}
}

func TestService_DeclinedOperationLeavesStorageUntouched(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()

	before, _ := store.Load(ctx, state.LocalAccount)

	_, err := svc.Record(ctx, state.LocalAccount, Operation{Type: core.Expense, Amount: 1e9})
	if err != core.ErrInsufficientCash {
		t.Fatalf("expected ErrInsufficientCash, got %v", err)
	}

	after, _ := store.Load(ctx, state.LocalAccount)
	if after.Cash != before.Cash || len(after.Entries) != len(before.Entries) {
		t.Errorf("declined operation changed persisted state")
	}
}

func TestService_BufferWarningStillApplies(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	// Move some cash into the buffer, then deplete it below target.
	if _, err := svc.Record(ctx, state.LocalAccount, Operation{Type: core.MoveToBuffer, Amount: 500}); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Record(ctx, state.LocalAccount, Operation{Type: core.MoveBufferToCar, Amount: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.BufferWarning {
		t.Error("expected buffer warning")
	}
	if res.Document.Buffer != 0 || res.Document.CarFund != 500 {
		t.Errorf("expected transfer applied despite warning, got %v/%v",
			res.Document.Buffer, res.Document.CarFund)
	}
}

func TestService_RecordMonthlyCosts(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	res, err := svc.RecordMonthlyCosts(ctx, state.LocalAccount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Document.Cash != 1486-1200 {
		t.Errorf("expected cash 286 after monthly costs, got %v", res.Document.Cash)
	}
	if res.Entry.Type != core.Expense || res.Entry.Amount != 1200 {
		t.Errorf("unexpected entry %+v", res.Entry)
	}
}

func TestService_RecordHoursWorked(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	res, err := svc.RecordHoursWorked(ctx, state.LocalAccount, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Entry.Amount != 200 {
		t.Errorf("expected 10h at rate 20 = 200, got %v", res.Entry.Amount)
	}
	if res.Document.Cash != 1686 {
		t.Errorf("expected cash 1686, got %v", res.Document.Cash)
	}
}
