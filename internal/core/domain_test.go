package core

import (
	"testing"
	"time"
)

func TestNewDocument_SeedsCashFromStartingSavings(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	doc := NewDocument(now)

	if doc.Cash != 1486 {
		t.Errorf("expected cash seeded from startingSavings 1486, got %v", doc.Cash)
	}
	if doc.Buffer != 0 || doc.CarFund != 0 {
		t.Errorf("expected empty buffer and car fund, got %v / %v", doc.Buffer, doc.CarFund)
	}
	if len(doc.Entries) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(doc.Entries))
	}
	if doc.Meta.LastModified != now.UnixMilli() {
		t.Errorf("expected lastModified stamped, got %d", doc.Meta.LastModified)
	}
}

func TestMonthlyCosts(t *testing.T) {
	doc := Defaults()
	if got := doc.MonthlyCosts(); got != 1200 {
		t.Errorf("expected default monthly costs 1200, got %v", got)
	}
}

func TestProgressPct(t *testing.T) {
	tests := []struct {
		name    string
		goal    float64
		carFund float64
		want    int
	}{
		{"zero goal", 0, 100, 0},
		{"halfway", 3500, 1750, 50},
		{"rounding", 3500, 1000, 29},
		{"capped at 100", 3500, 9000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := StateDocument{Goal: tt.goal, CarFund: tt.carFund}
			if got := doc.ProgressPct(); got != tt.want {
				t.Errorf("ProgressPct() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	doc := StateDocument{Goal: 3500, CarFund: 4000}
	if got := doc.Remaining(); got != 0 {
		t.Errorf("expected remaining clamped at 0, got %v", got)
	}
}

func TestPrepend_NewestFirst(t *testing.T) {
	doc := StateDocument{Entries: []LedgerEntry{{ID: "old"}}}
	doc.Prepend(LedgerEntry{ID: "new"})

	if doc.Entries[0].ID != "new" {
		t.Errorf("expected newest entry at head, got %q", doc.Entries[0].ID)
	}
	if len(doc.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(doc.Entries))
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		typ       EntryType
		wantLabel string
		wantClass string
	}{
		{Income, "Income", "income"},
		{Expense, "Expense", "expense"},
		{Debt, "Debt", "debt"},
		{MoveToCar, "Move", ""},
		{MoveBufferToCar, "Move", ""},
		{EntryType("mystery"), "mystery", ""},
	}
	for _, tt := range tests {
		label, class := Label(tt.typ)
		if label != tt.wantLabel || class != tt.wantClass {
			t.Errorf("Label(%q) = %q/%q, want %q/%q", tt.typ, label, class, tt.wantLabel, tt.wantClass)
		}
	}
}

func TestParseEntryDate(t *testing.T) {
	if _, ok := ParseEntryDate("2026-02-30"); ok {
		t.Error("expected impossible date to be unparseable")
	}
	if _, ok := ParseEntryDate("not a date"); ok {
		t.Error("expected garbage date to be unparseable")
	}
	d, ok := ParseEntryDate("2026-03-01")
	if !ok || d.Month() != time.March {
		t.Errorf("expected valid date parsed, got %v %v", d, ok)
	}
}
