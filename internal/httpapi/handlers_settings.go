package httpapi

import (
	"net/http"

	"carfund/internal/engine"
	"carfund/internal/log"
	"carfund/internal/state"
)

type settingsPayload struct {
	Goal            float64 `json:"goal"`
	StartingSavings float64 `json:"startingSavings"`
	BufferTarget    float64 `json:"bufferTarget"`
	HourlyRate      float64 `json:"hourlyRate"`
	Rent            float64 `json:"rent"`
	Bills           float64 `json:"bills"`
	Food            float64 `json:"food"`
	Smoking         float64 `json:"smoking"`
	Social          float64 `json:"social"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	cfg := engine.SettingsFrom(doc)
	writeJSON(w, http.StatusOK, settingsPayload{
		Goal:            cfg.Goal,
		StartingSavings: cfg.StartingSavings,
		BufferTarget:    cfg.BufferTarget,
		HourlyRate:      cfg.HourlyRate,
		Rent:            cfg.Rent,
		Bills:           cfg.Bills,
		Food:            cfg.Food,
		Smoking:         cfg.Smoking,
		Social:          cfg.Social,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.engine.UpdateSettings(r.Context(), state.LocalAccount, engine.Settings{
		Goal:            req.Goal,
		StartingSavings: req.StartingSavings,
		BufferTarget:    req.BufferTarget,
		HourlyRate:      req.HourlyRate,
		Rent:            req.Rent,
		Bills:           req.Bills,
		Food:            req.Food,
		Smoking:         req.Smoking,
		Social:          req.Social,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Settings updated", log.FieldOperation, log.OpSave)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetAll(r.Context(), state.LocalAccount); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	doc, err := s.store.Load(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "State reset to defaults", log.FieldOperation, log.OpReset)
	writeJSON(w, http.StatusOK, doc)
}
