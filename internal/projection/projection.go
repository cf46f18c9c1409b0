// Package projection derives the savings rate and the estimated goal
// completion date from the ledger's recent history. The projection is a
// deliberately crude linear one: no smoothing, no seasonality.
//
// The days-needed figure is computed from the unrounded monthly rate and only
// ceiled once at the end. Rounding the rate before dividing can land the
// estimate on a different day, so the rate is never rounded for display
// purposes before this calculation.
package projection

import (
	"math"
	"time"

	"carfund/internal/core"
)

// bufferDiscount models that part of the income should go to the buffer
// first while it sits below its target.
const bufferDiscount = 0.75

// trailingWindow is the history window feeding the rate.
const trailingWindow = 60 * 24 * time.Hour

// NetRatePerMonth scans entries dated within the trailing 60 days, sums
// income minus expenses and debt payments, and halves the net to approximate
// a monthly rate. Transfers are zero-sum within the tracked buckets and are
// excluded. Entries with unparseable dates are excluded, never an error.
func NetRatePerMonth(doc core.StateDocument, now time.Time) float64 {
	cutoff := now.Add(-trailingWindow)
	var net float64

	for _, e := range doc.Entries {
		d, ok := core.ParseEntryDate(e.Date)
		if !ok {
			continue
		}
		if d.Before(cutoff) {
			continue
		}
		switch e.Type {
		case core.Income:
			net += e.Amount
		case core.Expense, core.Debt:
			net -= e.Amount
		}
	}
	return net / 2
}

// Estimate is the projected completion of the car fund goal.
type Estimate struct {
	// Rate is the monthly rate after any buffer discount.
	Rate float64

	// Known is false when the rate is non-positive and no completion date
	// can be projected.
	Known bool

	DaysNeeded int
	Date       time.Time
}

// EstimateCompletion projects when the car fund reaches the goal at the
// current rate, using a 30-days-per-month approximation. While the buffer is
// below target the rate is discounted by 0.75.
func EstimateCompletion(doc core.StateDocument, now time.Time) Estimate {
	remaining := doc.Remaining()
	rate := NetRatePerMonth(doc, now)
	if rate <= 0 {
		return Estimate{Rate: rate}
	}

	if doc.Buffer < doc.BufferTarget {
		rate *= bufferDiscount
	}

	monthsNeeded := remaining / rate
	daysNeeded := int(math.Ceil(monthsNeeded * 30))

	return Estimate{
		Rate:       rate,
		Known:      true,
		DaysNeeded: daysNeeded,
		Date:       now.AddDate(0, 0, daysNeeded),
	}
}
