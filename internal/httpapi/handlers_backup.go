package httpapi

import (
	"net/http"

	"carfund/internal/backup"
	"carfund/internal/log"
	"carfund/internal/state"
)

// handleExport downloads the full state document as a JSON backup file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.backups.Export(r.Context(), state.LocalAccount)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport replaces the whole state with an uploaded backup. An invalid
// document is rejected and the current state stays untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.backups.Import(r.Context(), state.LocalAccount, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "not a valid backup document")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Imported backup",
		log.FieldOperation, log.OpImport,
		"entries", len(doc.Entries))
	writeJSON(w, http.StatusOK, doc)
}
