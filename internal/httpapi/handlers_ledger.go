package httpapi

import (
	"net/http"
	"strings"

	"carfund/internal/core"
	"carfund/internal/projection"
	"carfund/internal/state"
)

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ledgerRow is an entry plus its display classification.
type ledgerRow struct {
	core.LedgerEntry
	Label string `json:"label"`
	Class string `json:"class,omitempty"`
}

// ledgerTotals sums the visible rows by direction; transfers count rows only.
type ledgerTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Debt    float64 `json:"debt"`
	Count   int     `json:"count"`
}

type ledgerResponse struct {
	Entries []ledgerRow  `json:"entries"`
	Totals  ledgerTotals `json:"totals"`
}

// handleLedger returns the ledger newest first, narrowed by an optional
// filter category (all, income, expense, debt, move) and a free-text search
// over descriptions.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = "all"
	}
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	resp := ledgerResponse{Entries: []ledgerRow{}}
	for _, e := range doc.Entries {
		if !matchesFilter(e.Type, filter) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Desc), query) {
			continue
		}

		label, class := core.Label(e.Type)
		resp.Entries = append(resp.Entries, ledgerRow{LedgerEntry: e, Label: label, Class: class})
		resp.Totals.Count++
		switch e.Type {
		case core.Income:
			resp.Totals.Income += e.Amount
		case core.Expense:
			resp.Totals.Expense += e.Amount
		case core.Debt:
			resp.Totals.Debt += e.Amount
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func matchesFilter(t core.EntryType, filter string) bool {
	switch filter {
	case "all":
		return true
	case "income":
		return t == core.Income
	case "expense":
		return t == core.Expense
	case "debt":
		return t == core.Debt
	case "move":
		return core.IsTransfer(t)
	default:
		return true
	}
}

type estimateResponse struct {
	Known      bool    `json:"known"`
	Rate       float64 `json:"rate"`
	DaysNeeded int     `json:"daysNeeded,omitempty"`
	Date       string  `json:"date,omitempty"`
}

type summaryResponse struct {
	Cash         float64 `json:"cash"`
	Buffer       float64 `json:"buffer"`
	BufferTarget float64 `json:"bufferTarget"`
	CarFund      float64 `json:"carFund"`
	Goal         float64 `json:"goal"`
	Remaining    float64 `json:"remaining"`
	ProgressPct  int     `json:"progressPct"`
	MonthlyCosts float64 `json:"monthlyCosts"`

	Estimate estimateResponse `json:"estimate"`

	Warnings       []string `json:"warnings"`
	AllocationHint string   `json:"allocationHint"`
	SyncStatus     string   `json:"syncStatus"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := s.now()
	est := projection.EstimateCompletion(doc, now)

	resp := summaryResponse{
		Cash:         doc.Cash,
		Buffer:       doc.Buffer,
		BufferTarget: doc.BufferTarget,
		CarFund:      doc.CarFund,
		Goal:         doc.Goal,
		Remaining:    doc.Remaining(),
		ProgressPct:  doc.ProgressPct(),
		MonthlyCosts: doc.MonthlyCosts(),
		Estimate: estimateResponse{
			Known: est.Known,
			Rate:  est.Rate,
		},
		Warnings:   []string{},
		SyncStatus: s.syncStatus(),
	}
	if est.Known {
		resp.Estimate.DaysNeeded = est.DaysNeeded
		resp.Estimate.Date = core.ISODate(est.Date)
	}

	if doc.Buffer < doc.BufferTarget {
		resp.Warnings = append(resp.Warnings, "buffer below target")
		resp.AllocationHint = "Fill the buffer before moving savings to the car fund."
	} else {
		resp.AllocationHint = "Buffer target met. Direct spare cash to the car fund."
	}
	if doc.Cash < 0 {
		resp.Warnings = append(resp.Warnings, "cash is negative")
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) syncStatus() string {
	if s.sync == nil {
		return "Local only"
	}
	return s.sync.Status()
}
