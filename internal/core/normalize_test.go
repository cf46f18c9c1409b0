package core

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestNormalize_RepairsNumericFields(t *testing.T) {
	doc := StateDocument{
		Goal: math.NaN(),
		Cash: math.Inf(1),
	}

	got := Normalize(doc, testNow)

	if got.Goal != 0 {
		t.Errorf("expected NaN goal coerced to 0, got %v", got.Goal)
	}
	if got.Cash != 0 {
		t.Errorf("expected Inf cash coerced to 0, got %v", got.Cash)
	}
	if got.Entries == nil {
		t.Error("entries must never be nil after normalization")
	}
	if got.Meta.LastModified != testNow.UnixMilli() {
		t.Errorf("expected missing lastModified reset to now, got %d", got.Meta.LastModified)
	}
}

func TestNormalize_KeepsValidTimestamp(t *testing.T) {
	doc := StateDocument{Meta: Meta{LastModified: 1234}}

	got := Normalize(doc, testNow)

	if got.Meta.LastModified != 1234 {
		t.Errorf("expected valid lastModified preserved, got %d", got.Meta.LastModified)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	doc := StateDocument{
		Goal:    math.NaN(),
		Entries: nil,
		Meta:    Meta{LastModified: -5},
	}

	once := Normalize(doc, testNow)
	twice := Normalize(once, testNow.Add(time.Hour))

	if once.Meta.LastModified != twice.Meta.LastModified {
		t.Errorf("second normalize changed lastModified: %d vs %d",
			once.Meta.LastModified, twice.Meta.LastModified)
	}
	if once.Goal != twice.Goal || len(once.Entries) != len(twice.Entries) {
		t.Error("normalize is not idempotent")
	}
}

func TestDecode_CoercesLooseDocument(t *testing.T) {
	raw := []byte(`{
		"goal": "3500",
		"startingSavings": 1486,
		"cash": "not a number",
		"buffer": null,
		"entries": [
			{"id": "a", "date": "2026-01-02", "type": "income", "amount": 100, "desc": "  salary  "},
			"garbage",
			{"id": "b", "date": "2026-01-03", "type": "expense", "amount": "40", "desc": ""}
		],
		"meta": {"lastModified": 999}
	}`)

	doc, err := Decode(raw, testNow)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if doc.Goal != 3500 {
		t.Errorf("expected numeric string goal coerced to 3500, got %v", doc.Goal)
	}
	if doc.StartingSavings != 1486 {
		t.Errorf("expected startingSavings 1486, got %v", doc.StartingSavings)
	}
	if doc.Cash != 0 {
		t.Errorf("expected non-numeric cash coerced to 0, got %v", doc.Cash)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected malformed ledger element skipped, got %d entries", len(doc.Entries))
	}
	if doc.Entries[0].Desc != "salary" {
		t.Errorf("expected trimmed desc, got %q", doc.Entries[0].Desc)
	}
	if doc.Entries[1].Amount != 40 {
		t.Errorf("expected string amount coerced to 40, got %v", doc.Entries[1].Amount)
	}
	if doc.Meta.LastModified != 999 {
		t.Errorf("expected lastModified 999, got %d", doc.Meta.LastModified)
	}
}

func TestDecode_RejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"hi"`, `42`, `{broken`} {
		if _, err := Decode([]byte(raw), testNow); err == nil {
			t.Errorf("expected error decoding %q", raw)
		}
	}
}

func TestDecode_MissingMetaTreatedAsFresh(t *testing.T) {
	doc, err := Decode([]byte(`{"goal": 100}`), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.LastModified != testNow.UnixMilli() {
		t.Errorf("expected imported doc without timestamp treated as freshly modified, got %d",
			doc.Meta.LastModified)
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"numeric string", " 42 ", 42},
		{"empty string", "", 0},
		{"garbage string", "abc", 0},
		{"nil", nil, 0},
		{"bool true", true, 1},
		{"object", map[string]any{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toNumber(tt.in); got != tt.want {
				t.Errorf("toNumber(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
