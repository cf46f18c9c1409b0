package httpapi

import (
	"net/http"

	"carfund/internal/log"
)

type syncStatusResponse struct {
	Status string `json:"status"`
}

// handleSyncNow forces an immediate pull-and-reconcile with the remote mirror.
func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		writeError(w, http.StatusConflict, "no remote mirror configured")
		return
	}

	if err := s.sync.SyncNow(r.Context()); err != nil {
		fields := log.NewFields().WithOperation(log.OpSync).WithError(err)
		fields[log.FieldSyncStatus] = s.sync.Status()
		log.FromContext(r.Context()).WarnContext(r.Context(), "Manual sync failed", fields.ToSlice()...)
	}
	writeJSON(w, http.StatusOK, syncStatusResponse{Status: s.sync.Status()})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, syncStatusResponse{Status: s.syncStatus()})
}
