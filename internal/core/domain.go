package core

import (
	"errors"
	"time"
)

// EntryType identifies the kind of a ledger entry. The set is closed for the
// operation paths, but unknown values coming from imports are kept as-is and
// rendered with their literal value.
type EntryType string

const (
	Income          EntryType = "income"
	Expense         EntryType = "expense"
	Debt            EntryType = "debt"
	MoveToCar       EntryType = "move_to_car"
	MoveToBuffer    EntryType = "move_to_buffer"
	MoveBufferToCar EntryType = "move_buffer_to_car"
	MoveCarToBuffer EntryType = "move_car_to_buffer"
)

type (
	// LedgerEntry is one immutable recorded transaction. Amounts are stored
	// as non-negative magnitudes; the sign is implied by the type.
	LedgerEntry struct {
		ID     string    `json:"id"`
		Date   string    `json:"date"` // ISO 8601 calendar date, no time component
		Type   EntryType `json:"type"`
		Amount float64   `json:"amount"`
		Desc   string    `json:"desc"`
	}

	// Meta carries document-level bookkeeping.
	Meta struct {
		// LastModified is epoch milliseconds of the last local mutation and
		// the sole conflict-resolution signal for cloud sync.
		LastModified int64 `json:"lastModified"`
	}

	// StateDocument is the whole persisted state for one account: numeric
	// configuration, the three bucket balances, and the ledger.
	//
	// Balances are forward-only accumulators mutated in lockstep with entry
	// insertion; they are never recomputed from Entries.
	StateDocument struct {
		Goal            float64 `json:"goal"`
		StartingSavings float64 `json:"startingSavings"`
		BufferTarget    float64 `json:"bufferTarget"`
		HourlyRate      float64 `json:"hourlyRate"`
		Rent            float64 `json:"rent"`
		Bills           float64 `json:"bills"`
		Food            float64 `json:"food"`
		Smoking         float64 `json:"smoking"`
		Social          float64 `json:"social"`

		Cash    float64 `json:"cash"`
		Buffer  float64 `json:"buffer"`
		CarFund float64 `json:"carFund"`

		// Entries is ordered newest first; insertion happens at the head.
		Entries []LedgerEntry `json:"entries"`

		Meta Meta `json:"meta"`
	}
)

// Declined-operation errors returned by the transaction engine. These are
// user-facing reasons, never fatal.
var (
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrInsufficientCash    = errors.New("not enough cash")
	ErrInsufficientBuffer  = errors.New("not enough buffer")
	ErrInsufficientCarFund = errors.New("not enough car fund")
	ErrNoMonthlyCosts      = errors.New("monthly costs are zero; set them first")
	ErrUnknownEntryType    = errors.New("unknown entry type")
)

// Defaults returns the initial configuration for a fresh document. Buckets
// start empty; seeding cash from StartingSavings happens at creation time.
func Defaults() StateDocument {
	return StateDocument{
		Goal:            3500,
		StartingSavings: 1486,
		BufferTarget:    1200,
		HourlyRate:      20,
		Rent:            500,
		Bills:           200,
		Food:            250,
		Smoking:         150,
		Social:          100,
		Entries:         []LedgerEntry{},
	}
}

// NewDocument creates a fresh document with default configuration, cash
// seeded from the starting savings and the modification time stamped.
func NewDocument(now time.Time) StateDocument {
	doc := Defaults()
	doc.Cash = doc.StartingSavings
	doc.Meta.LastModified = now.UnixMilli()
	return doc
}

// MonthlyCosts is the sum of all configured recurring cost fields.
func (d StateDocument) MonthlyCosts() float64 {
	return d.Rent + d.Bills + d.Food + d.Smoking + d.Social
}

// Remaining is how much is still missing from the car fund goal.
func (d StateDocument) Remaining() float64 {
	if r := d.Goal - d.CarFund; r > 0 {
		return r
	}
	return 0
}

// ProgressPct is the car fund progress toward the goal, capped at 100.
func (d StateDocument) ProgressPct() int {
	if d.Goal <= 0 {
		return 0
	}
	pct := int(d.CarFund/d.Goal*100 + 0.5)
	if pct > 100 {
		return 100
	}
	return pct
}

// Prepend inserts e at the head of the ledger (newest first).
func (d *StateDocument) Prepend(e LedgerEntry) {
	d.Entries = append([]LedgerEntry{e}, d.Entries...)
}

// ISODate formats t as an ISO 8601 calendar date.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseEntryDate parses an entry's calendar date. The second return is false
// when the date is unparseable; callers treat such entries as not newer than
// any cutoff.
func ParseEntryDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Label classifies an entry type for display, returning the human label and a
// CSS-ish class. Unknown types pass through with their literal value.
func Label(t EntryType) (string, string) {
	switch t {
	case Income:
		return "Income", "income"
	case Expense:
		return "Expense", "expense"
	case Debt:
		return "Debt", "debt"
	case MoveToCar, MoveToBuffer, MoveBufferToCar, MoveCarToBuffer:
		return "Move", ""
	default:
		return string(t), ""
	}
}

// IsTransfer reports whether t moves money between buckets without changing
// the combined total.
func IsTransfer(t EntryType) bool {
	switch t {
	case MoveToCar, MoveToBuffer, MoveBufferToCar, MoveCarToBuffer:
		return true
	}
	return false
}
