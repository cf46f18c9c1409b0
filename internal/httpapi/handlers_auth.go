package httpapi

import (
	"context"
	"net/http"
	"strings"

	"carfund/internal/auth"
	"carfund/internal/log"
)

// sessionSetter is implemented by providers that can adopt an access token
// obtained from the magic-link redirect.
type sessionSetter interface {
	SetSession(ctx context.Context, accessToken string) (*auth.Account, error)
}

func (s *Server) handleBeginMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		RedirectTo string `json:"redirectTo"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := sanitizeInput(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if err := s.accounts.BeginMagicLink(r.Context(), email, sanitizeInput(req.RedirectTo)); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Magic link request failed",
			log.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, "could not send sign-in link")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "Check your email for the sign-in link"})
}

func (s *Server) handleSetSession(w http.ResponseWriter, r *http.Request) {
	setter, ok := s.accounts.(sessionSetter)
	if !ok {
		writeError(w, http.StatusConflict, "auth provider does not support sessions")
		return
	}

	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := setter.SetSession(r.Context(), strings.TrimSpace(req.AccessToken))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid session token")
		return
	}

	fields := log.NewFields().WithAccount(account.ID)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Session established", fields.ToSlice()...)
	writeJSON(w, http.StatusOK, map[string]any{
		"signedIn": true,
		"email":    account.Email,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.SignOut(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Sign-out failed", log.FieldError, err.Error())
	}
	writeJSON(w, http.StatusOK, map[string]any{"signedIn": false})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{
		"signedIn":   account != nil,
		"syncStatus": s.syncStatus(),
	}
	if account != nil {
		resp["email"] = account.Email
	}
	writeJSON(w, http.StatusOK, resp)
}
