package projection

import (
	"testing"
	"time"

	"carfund/internal/core"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func entry(typ core.EntryType, amount float64, date string) core.LedgerEntry {
	return core.LedgerEntry{Type: typ, Amount: amount, Date: date}
}

func TestNetRatePerMonth(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.LedgerEntry
		want    float64
	}{
		{
			name: "income minus spending halved",
			entries: []core.LedgerEntry{
				entry(core.Income, 1800, "2026-03-01"),
				entry(core.Expense, 400, "2026-03-02"),
				entry(core.Debt, 200, "2026-03-03"),
			},
			want: 600, // (1800-400-200)/2
		},
		{
			name: "transfers are excluded",
			entries: []core.LedgerEntry{
				entry(core.Income, 1000, "2026-03-01"),
				entry(core.MoveToCar, 500, "2026-03-01"),
				entry(core.MoveToBuffer, 200, "2026-03-01"),
				entry(core.MoveBufferToCar, 100, "2026-03-01"),
				entry(core.MoveCarToBuffer, 50, "2026-03-01"),
			},
			want: 500,
		},
		{
			name: "entries older than 60 days are excluded",
			entries: []core.LedgerEntry{
				entry(core.Income, 1000, "2026-03-01"),
				entry(core.Income, 9999, "2025-12-01"),
			},
			want: 500,
		},
		{
			name: "unparseable dates are excluded, not fatal",
			entries: []core.LedgerEntry{
				entry(core.Income, 1000, "2026-03-01"),
				entry(core.Income, 9999, "not-a-date"),
				entry(core.Expense, 9999, ""),
			},
			want: 500,
		},
		{
			name:    "empty ledger",
			entries: nil,
			want:    0,
		},
		{
			name: "net spending gives negative rate",
			entries: []core.LedgerEntry{
				entry(core.Expense, 300, "2026-03-01"),
			},
			want: -150,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := core.StateDocument{Entries: tt.entries}
			if got := NetRatePerMonth(doc, now); got != tt.want {
				t.Errorf("NetRatePerMonth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateCompletion_UnknownWhenRateNonPositive(t *testing.T) {
	doc := core.StateDocument{Goal: 3500}
	est := EstimateCompletion(doc, now)
	if est.Known {
		t.Error("expected unknown completion with zero rate")
	}

	doc.Entries = []core.LedgerEntry{entry(core.Expense, 100, "2026-03-01")}
	est = EstimateCompletion(doc, now)
	if est.Known {
		t.Error("expected unknown completion with negative rate")
	}
	if est.Rate != -50 {
		t.Errorf("expected raw rate reported, got %v", est.Rate)
	}
}

func TestEstimateCompletion_BufferDiscount(t *testing.T) {
	// 60-day net of 200 -> rate 100/month; buffer below target discounts to 75.
	doc := core.StateDocument{
		Goal:         3500,
		BufferTarget: 1200,
		Buffer:       0,
		Entries:      []core.LedgerEntry{entry(core.Income, 200, "2026-03-01")},
	}

	est := EstimateCompletion(doc, now)
	if !est.Known {
		t.Fatal("expected a known estimate")
	}
	if est.Rate != 75 {
		t.Errorf("expected discounted rate 75, got %v", est.Rate)
	}
	// 3500/75 months at 30 days/month.
	if est.DaysNeeded != 1400 {
		t.Errorf("expected 1400 days, got %d", est.DaysNeeded)
	}
	if want := now.AddDate(0, 0, 1400); !est.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, est.Date)
	}
}

func TestEstimateCompletion_NoDiscountWhenBufferMet(t *testing.T) {
	doc := core.StateDocument{
		Goal:         3500,
		BufferTarget: 1200,
		Buffer:       1200,
		Entries:      []core.LedgerEntry{entry(core.Income, 200, "2026-03-01")},
	}

	est := EstimateCompletion(doc, now)
	if est.Rate != 100 {
		t.Errorf("expected undiscounted rate 100, got %v", est.Rate)
	}
	if est.DaysNeeded != 1050 {
		t.Errorf("expected ceil(3500/100*30)=1050 days, got %d", est.DaysNeeded)
	}
}

func TestEstimateCompletion_GoalReached(t *testing.T) {
	doc := core.StateDocument{
		Goal:    3500,
		CarFund: 4000,
		Buffer:  2000,
		Entries: []core.LedgerEntry{entry(core.Income, 200, "2026-03-01")},
	}

	est := EstimateCompletion(doc, now)
	if !est.Known || est.DaysNeeded != 0 {
		t.Errorf("expected 0 days when goal already reached, got %+v", est)
	}
}
