package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNotADocument is returned when raw bytes do not hold a JSON object.
var ErrNotADocument = errors.New("not a state document")

// Normalize repairs a possibly-malformed document into a structurally valid
// one: every numeric field ends up finite (non-numbers become 0), Entries is
// never nil, and Meta.LastModified is a positive integer. A document without
// a usable timestamp is treated as freshly modified, never as arbitrarily old.
//
// Normalize is idempotent: applying it twice yields the same document.
func Normalize(doc StateDocument, now time.Time) StateDocument {
	doc.Goal = finite(doc.Goal)
	doc.StartingSavings = finite(doc.StartingSavings)
	doc.BufferTarget = finite(doc.BufferTarget)
	doc.HourlyRate = finite(doc.HourlyRate)
	doc.Rent = finite(doc.Rent)
	doc.Bills = finite(doc.Bills)
	doc.Food = finite(doc.Food)
	doc.Smoking = finite(doc.Smoking)
	doc.Social = finite(doc.Social)
	doc.Cash = finite(doc.Cash)
	doc.Buffer = finite(doc.Buffer)
	doc.CarFund = finite(doc.CarFund)

	if doc.Entries == nil {
		doc.Entries = []LedgerEntry{}
	}
	for i := range doc.Entries {
		doc.Entries[i].Amount = finite(doc.Entries[i].Amount)
		doc.Entries[i].Desc = strings.TrimSpace(doc.Entries[i].Desc)
	}

	if doc.Meta.LastModified <= 0 {
		doc.Meta.LastModified = now.UnixMilli()
	}

	return doc
}

// Decode parses raw bytes into a normalized StateDocument. Unknown fields are
// dropped, wrong-typed fields are coerced (non-numbers to 0) and malformed
// ledger elements are skipped. The only hard failure is input that is not a
// JSON object at all.
func Decode(data []byte, now time.Time) (StateDocument, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return StateDocument{}, fmt.Errorf("parse state document: %w", err)
	}
	if raw == nil {
		return StateDocument{}, ErrNotADocument
	}
	return FromRaw(raw, now), nil
}

// FromRaw coerces an arbitrary decoded JSON object into a StateDocument.
func FromRaw(raw map[string]any, now time.Time) StateDocument {
	doc := StateDocument{
		Goal:            toNumber(raw["goal"]),
		StartingSavings: toNumber(raw["startingSavings"]),
		BufferTarget:    toNumber(raw["bufferTarget"]),
		HourlyRate:      toNumber(raw["hourlyRate"]),
		Rent:            toNumber(raw["rent"]),
		Bills:           toNumber(raw["bills"]),
		Food:            toNumber(raw["food"]),
		Smoking:         toNumber(raw["smoking"]),
		Social:          toNumber(raw["social"]),
		Cash:            toNumber(raw["cash"]),
		Buffer:          toNumber(raw["buffer"]),
		CarFund:         toNumber(raw["carFund"]),
		Entries:         []LedgerEntry{},
	}

	if list, ok := raw["entries"].([]any); ok {
		for _, el := range list {
			obj, ok := el.(map[string]any)
			if !ok {
				continue
			}
			doc.Entries = append(doc.Entries, LedgerEntry{
				ID:     toString(obj["id"]),
				Date:   toString(obj["date"]),
				Type:   EntryType(toString(obj["type"])),
				Amount: toNumber(obj["amount"]),
				Desc:   strings.TrimSpace(toString(obj["desc"])),
			})
		}
	}

	if meta, ok := raw["meta"].(map[string]any); ok {
		doc.Meta.LastModified = int64(toNumber(meta["lastModified"]))
	}

	return Normalize(doc, now)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toNumber mirrors the loose coercion of the reference behavior: numbers pass
// through, numeric strings parse, everything else becomes 0.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return finite(f)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
