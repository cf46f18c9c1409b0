package engine

import (
	"math"
	"testing"
	"time"

	"carfund/internal/core"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func baseDoc() core.StateDocument {
	doc := core.Defaults()
	doc.Cash = 1486
	return doc
}

func TestApply_BalanceEffects(t *testing.T) {
	tests := []struct {
		name        string
		start       core.StateDocument
		op          Operation
		wantCash    float64
		wantBuffer  float64
		wantCarFund float64
	}{
		{
			name:     "income adds to cash",
			start:    core.StateDocument{Cash: 100},
			op:       Operation{Type: core.Income, Amount: 50},
			wantCash: 150,
		},
		{
			name:     "expense subtracts from cash",
			start:    core.StateDocument{Cash: 100},
			op:       Operation{Type: core.Expense, Amount: 40},
			wantCash: 60,
		},
		{
			name:     "debt subtracts from cash",
			start:    core.StateDocument{Cash: 100},
			op:       Operation{Type: core.Debt, Amount: 100},
			wantCash: 0,
		},
		{
			name:        "move to car",
			start:       core.StateDocument{Cash: 100},
			op:          Operation{Type: core.MoveToCar, Amount: 30},
			wantCash:    70,
			wantCarFund: 30,
		},
		{
			name:       "move to buffer",
			start:      core.StateDocument{Cash: 100},
			op:         Operation{Type: core.MoveToBuffer, Amount: 100},
			wantBuffer: 100,
		},
		{
			name:        "move buffer to car",
			start:       core.StateDocument{Buffer: 500},
			op:          Operation{Type: core.MoveBufferToCar, Amount: 500},
			wantCarFund: 500,
		},
		{
			name:       "move car to buffer",
			start:      core.StateDocument{CarFund: 200},
			op:         Operation{Type: core.MoveCarToBuffer, Amount: 150},
			wantBuffer: 150, wantCarFund: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, entry, err := Apply(tt.start, tt.op, "id-1", now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Cash != tt.wantCash || got.Buffer != tt.wantBuffer || got.CarFund != tt.wantCarFund {
				t.Errorf("balances = %v/%v/%v, want %v/%v/%v",
					got.Cash, got.Buffer, got.CarFund, tt.wantCash, tt.wantBuffer, tt.wantCarFund)
			}
			if len(got.Entries) != len(tt.start.Entries)+1 {
				t.Errorf("expected exactly one appended entry")
			}
			if got.Entries[0].ID != "id-1" || got.Entries[0].Amount != tt.op.Amount {
				t.Errorf("head entry = %+v", got.Entries[0])
			}
			if entry.Amount < 0 {
				t.Errorf("entry amounts are stored as magnitudes, got %v", entry.Amount)
			}
			if entry.Date != "2026-03-14" {
				t.Errorf("expected date defaulted to today, got %q", entry.Date)
			}
		})
	}
}

func TestApply_DeclinedOperations(t *testing.T) {
	tests := []struct {
		name    string
		start   core.StateDocument
		op      Operation
		wantErr error
	}{
		{"zero amount", core.StateDocument{Cash: 100}, Operation{Type: core.Income, Amount: 0}, core.ErrNonPositiveAmount},
		{"negative amount", core.StateDocument{Cash: 100}, Operation{Type: core.Expense, Amount: -5}, core.ErrNonPositiveAmount},
		{"NaN amount", core.StateDocument{Cash: 100}, Operation{Type: core.Income, Amount: math.NaN()}, core.ErrNonPositiveAmount},
		{"insufficient cash for expense", core.StateDocument{Cash: 10}, Operation{Type: core.Expense, Amount: 11}, core.ErrInsufficientCash},
		{"insufficient cash for debt", core.StateDocument{Cash: 10}, Operation{Type: core.Debt, Amount: 20}, core.ErrInsufficientCash},
		{"insufficient cash for move", core.StateDocument{Cash: 10}, Operation{Type: core.MoveToCar, Amount: 11}, core.ErrInsufficientCash},
		{"insufficient buffer", core.StateDocument{Buffer: 10}, Operation{Type: core.MoveBufferToCar, Amount: 11}, core.ErrInsufficientBuffer},
		{"insufficient car fund", core.StateDocument{CarFund: 10}, Operation{Type: core.MoveCarToBuffer, Amount: 11}, core.ErrInsufficientCarFund},
		{"unknown type", core.StateDocument{Cash: 100}, Operation{Type: "mystery", Amount: 5}, core.ErrUnknownEntryType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := Apply(tt.start, tt.op, "id-1", now)
			if err != tt.wantErr {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			// No partial mutation: balances and ledger length unchanged.
			if got.Cash != tt.start.Cash || got.Buffer != tt.start.Buffer || got.CarFund != tt.start.CarFund {
				t.Errorf("declined operation mutated balances: %+v", got)
			}
			if len(got.Entries) != len(tt.start.Entries) {
				t.Errorf("declined operation appended an entry")
			}
		})
	}
}

func TestApply_SalaryScenario(t *testing.T) {
	doc := baseDoc()
	got, _, err := Apply(doc, SalaryOperation(1800), "id-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cash != 3286 {
		t.Errorf("expected cash 3286 after 1800 salary on 1486, got %v", got.Cash)
	}
	if got.Entries[0].Type != core.Income || got.Entries[0].Amount != 1800 {
		t.Errorf("expected income entry of 1800, got %+v", got.Entries[0])
	}
}

func TestApply_ConservationLaw(t *testing.T) {
	// cash + buffer + carFund - income + (expense+debt) == startingSavings
	doc := core.NewDocument(now)
	seed := doc.StartingSavings

	ops := []Operation{
		SalaryOperation(1800),
		{Type: core.Expense, Amount: 250, Desc: "groceries"},
		{Type: core.MoveToBuffer, Amount: 600},
		{Type: core.MoveToCar, Amount: 400},
		DebtPaymentOperation(314),
		{Type: core.MoveBufferToCar, Amount: 100},
		{Type: core.MoveCarToBuffer, Amount: 50},
	}

	var income, outflow float64
	for i, op := range ops {
		var err error
		doc, _, err = Apply(doc, op, "id", now)
		if err != nil {
			t.Fatalf("op %d declined: %v", i, err)
		}
		switch op.Type {
		case core.Income:
			income += op.Amount
		case core.Expense, core.Debt:
			outflow += op.Amount
		}
	}

	got := doc.Cash + doc.Buffer + doc.CarFund - income + outflow
	if math.Abs(got-seed) > 1e-9 {
		t.Errorf("conservation law violated: got %v, want %v", got, seed)
	}
}

func TestWouldBreachBufferTarget(t *testing.T) {
	doc := core.StateDocument{Buffer: 500, BufferTarget: 1200}
	op := Operation{Type: core.MoveBufferToCar, Amount: 500}

	if !WouldBreachBufferTarget(doc, op) {
		t.Error("expected warning for buffer-depleting transfer below target")
	}

	// The warning is soft: the operation still succeeds.
	got, _, err := Apply(doc, op, "id-1", now)
	if err != nil {
		t.Fatalf("soft warning must not decline the operation: %v", err)
	}
	if got.Buffer != 0 || got.CarFund != 500 {
		t.Errorf("expected buffer 0 carFund 500, got %v/%v", got.Buffer, got.CarFund)
	}

	rich := core.StateDocument{Buffer: 2000, BufferTarget: 1200}
	if WouldBreachBufferTarget(rich, Operation{Type: core.MoveBufferToCar, Amount: 100}) {
		t.Error("no warning expected when buffer stays above target")
	}
	if WouldBreachBufferTarget(doc, Operation{Type: core.MoveToCar, Amount: 100}) {
		t.Error("only buffer-depleting transfers warn")
	}
}

func TestMonthlyCostsOperation(t *testing.T) {
	doc := core.Defaults()
	op, err := MonthlyCostsOperation(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Amount != 1200 || op.Type != core.Expense {
		t.Errorf("expected expense of 1200, got %+v", op)
	}

	var zero core.StateDocument
	if _, err := MonthlyCostsOperation(zero); err != core.ErrNoMonthlyCosts {
		t.Errorf("expected ErrNoMonthlyCosts, got %v", err)
	}
}

func TestHoursWorkedOperation(t *testing.T) {
	doc := core.Defaults() // hourlyRate 20
	op, err := HoursWorkedOperation(doc, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Amount != 150 {
		t.Errorf("expected round(7.5*20)=150, got %v", op.Amount)
	}
	if op.Type != core.Income {
		t.Errorf("hours worked follows the income contract, got %v", op.Type)
	}

	if _, err := HoursWorkedOperation(doc, 0); err != core.ErrNonPositiveAmount {
		t.Errorf("expected ErrNonPositiveAmount for zero hours, got %v", err)
	}
}

func TestApplySettings_StartingSavingsDelta(t *testing.T) {
	doc := core.NewDocument(now) // cash 1486 seeded, ledger empty
	settings := SettingsFrom(doc)
	settings.StartingSavings = 2000

	got := ApplySettings(doc, settings)
	if got.Cash != 2000 {
		t.Errorf("empty ledger: expected cash shifted by delta to 2000, got %v", got.Cash)
	}

	// Once entries exist, starting savings is informational only.
	got, _, err := Apply(got, SalaryOperation(100), "id-1", now)
	if err != nil {
		t.Fatal(err)
	}
	settings.StartingSavings = 5000
	after := ApplySettings(got, settings)
	if after.Cash != got.Cash {
		t.Errorf("non-empty ledger: cash must not shift, got %v want %v", after.Cash, got.Cash)
	}
}
