// Package engine applies financial operations to a state document. Each
// operation mutates balances and appends a ledger entry as one unit, or does
// nothing at all.
package engine

import (
	"fmt"
	"math"
	"time"

	"carfund/internal/core"
)

// Operation describes one requested ledger mutation. Amount is always a
// positive magnitude; the type decides the direction.
type Operation struct {
	Type   core.EntryType
	Amount float64
	Date   string // ISO calendar date; empty means today
	Desc   string
}

// Apply returns a copy of doc with the operation's balance effect and the
// appended entry. The input document is never modified; a declined operation
// returns it unchanged along with the reason.
func Apply(doc core.StateDocument, op Operation, entryID string, now time.Time) (core.StateDocument, core.LedgerEntry, error) {
	if op.Amount <= 0 || math.IsNaN(op.Amount) || math.IsInf(op.Amount, 0) {
		return doc, core.LedgerEntry{}, core.ErrNonPositiveAmount
	}

	switch op.Type {
	case core.Income:
		doc.Cash += op.Amount
	case core.Expense, core.Debt:
		if doc.Cash < op.Amount {
			return doc, core.LedgerEntry{}, core.ErrInsufficientCash
		}
		doc.Cash -= op.Amount
	case core.MoveToCar:
		if doc.Cash < op.Amount {
			return doc, core.LedgerEntry{}, core.ErrInsufficientCash
		}
		doc.Cash -= op.Amount
		doc.CarFund += op.Amount
	case core.MoveToBuffer:
		if doc.Cash < op.Amount {
			return doc, core.LedgerEntry{}, core.ErrInsufficientCash
		}
		doc.Cash -= op.Amount
		doc.Buffer += op.Amount
	case core.MoveBufferToCar:
		if doc.Buffer < op.Amount {
			return doc, core.LedgerEntry{}, core.ErrInsufficientBuffer
		}
		doc.Buffer -= op.Amount
		doc.CarFund += op.Amount
	case core.MoveCarToBuffer:
		if doc.CarFund < op.Amount {
			return doc, core.LedgerEntry{}, core.ErrInsufficientCarFund
		}
		doc.CarFund -= op.Amount
		doc.Buffer += op.Amount
	default:
		return doc, core.LedgerEntry{}, core.ErrUnknownEntryType
	}

	date := op.Date
	if date == "" {
		date = core.ISODate(now)
	}
	entry := core.LedgerEntry{
		ID:     entryID,
		Date:   date,
		Type:   op.Type,
		Amount: op.Amount,
		Desc:   op.Desc,
	}
	doc.Prepend(entry)
	return doc, entry, nil
}

// WouldBreachBufferTarget reports whether applying op would leave the buffer
// below its configured target. This is a soft warning: callers should confirm
// with the user but the engine still applies the operation.
func WouldBreachBufferTarget(doc core.StateDocument, op Operation) bool {
	if op.Type != core.MoveBufferToCar {
		return false
	}
	return doc.Buffer-op.Amount < doc.BufferTarget
}

// MonthlyCostsOperation builds the composite expense covering all configured
// monthly cost fields, or fails when they sum to zero.
func MonthlyCostsOperation(doc core.StateDocument) (Operation, error) {
	monthly := doc.MonthlyCosts()
	if monthly <= 0 {
		return Operation{}, core.ErrNoMonthlyCosts
	}
	return Operation{
		Type:   core.Expense,
		Amount: monthly,
		Desc:   "Monthly living costs (rent+bills+food+smoking+social)",
	}, nil
}

// HoursWorkedOperation converts freelance hours to an income operation at the
// configured hourly rate, rounding to the nearest whole amount.
func HoursWorkedOperation(doc core.StateDocument, hours float64) (Operation, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return Operation{}, core.ErrNonPositiveAmount
	}
	return Operation{
		Type:   core.Income,
		Amount: math.Round(hours * doc.HourlyRate),
		Desc:   fmt.Sprintf("Freelance (%gh @ %g/h)", hours, doc.HourlyRate),
	}, nil
}

// SalaryOperation builds a plain income deposit.
func SalaryOperation(amount float64) Operation {
	return Operation{Type: core.Income, Amount: amount, Desc: "Salary deposit"}
}

// DebtPaymentOperation builds a debt payment taken from cash.
func DebtPaymentOperation(amount float64) Operation {
	return Operation{Type: core.Debt, Amount: amount, Desc: "Debt payment"}
}

// Settings are the numeric configuration values of the document.
type Settings struct {
	Goal            float64
	StartingSavings float64
	BufferTarget    float64
	HourlyRate      float64
	Rent            float64
	Bills           float64
	Food            float64
	Smoking         float64
	Social          float64
}

// SettingsFrom extracts the current configuration from a document.
func SettingsFrom(doc core.StateDocument) Settings {
	return Settings{
		Goal:            doc.Goal,
		StartingSavings: doc.StartingSavings,
		BufferTarget:    doc.BufferTarget,
		HourlyRate:      doc.HourlyRate,
		Rent:            doc.Rent,
		Bills:           doc.Bills,
		Food:            doc.Food,
		Smoking:         doc.Smoking,
		Social:          doc.Social,
	}
}

// ApplySettings writes the configuration into the document. While the ledger
// is still empty, changing the starting savings shifts cash by the delta so
// the seed adjustment does not silently vanish; once entries exist the value
// is informational only.
func ApplySettings(doc core.StateDocument, s Settings) core.StateDocument {
	prevStarting := doc.StartingSavings

	doc.Goal = s.Goal
	doc.StartingSavings = s.StartingSavings
	doc.BufferTarget = s.BufferTarget
	doc.HourlyRate = s.HourlyRate
	doc.Rent = s.Rent
	doc.Bills = s.Bills
	doc.Food = s.Food
	doc.Smoking = s.Smoking
	doc.Social = s.Social

	if len(doc.Entries) == 0 {
		doc.Cash += s.StartingSavings - prevStarting
	}
	return doc
}
