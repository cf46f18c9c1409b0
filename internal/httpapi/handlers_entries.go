package httpapi

import (
	"net/http"

	"carfund/internal/core"
	"carfund/internal/engine"
	"carfund/internal/log"
	"carfund/internal/state"
)

// operationResponse is the outcome of a recorded operation: the new balances,
// the appended entry, and the soft buffer warning.
type operationResponse struct {
	Entry         core.LedgerEntry `json:"entry"`
	Cash          float64          `json:"cash"`
	Buffer        float64          `json:"buffer"`
	CarFund       float64          `json:"carFund"`
	BufferWarning bool             `json:"bufferWarning,omitempty"`
}

func operationResponseFrom(res engine.Result) operationResponse {
	return operationResponse{
		Entry:         res.Entry,
		Cash:          res.Document.Cash,
		Buffer:        res.Document.Buffer,
		CarFund:       res.Document.CarFund,
		BufferWarning: res.BufferWarning,
	}
}

func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string  `json:"type"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
		Desc   string  `json:"desc"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	op := engine.Operation{
		Type:   core.EntryType(sanitizeInput(req.Type)),
		Amount: req.Amount,
		Date:   sanitizeInput(req.Date),
		Desc:   sanitizeInput(req.Desc),
	}
	if op.Date != "" {
		if _, ok := core.ParseEntryDate(op.Date); !ok {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	res, err := s.engine.Record(r.Context(), state.LocalAccount, op)
	if err != nil {
		writeOperationError(w, err)
		return
	}

	fields := log.NewFields().
		WithOperation(log.OpRecord).
		WithEntry(res.Entry.ID, string(res.Entry.Type), res.Entry.Amount)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Recorded entry", fields.ToSlice()...)
	writeJSON(w, http.StatusCreated, operationResponseFrom(res))
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Record(r.Context(), state.LocalAccount, engine.SalaryOperation(req.Amount))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operationResponseFrom(res))
}

func (s *Server) handleMonthlyCosts(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.RecordMonthlyCosts(r.Context(), state.LocalAccount)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operationResponseFrom(res))
}

func (s *Server) handleHoursWorked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hours float64 `json:"hours"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.RecordHoursWorked(r.Context(), state.LocalAccount, req.Hours)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operationResponseFrom(res))
}

func (s *Server) handleDebtPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.engine.Record(r.Context(), state.LocalAccount, engine.DebtPaymentOperation(req.Amount))
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operationResponseFrom(res))
}
