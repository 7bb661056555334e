package api

import (
	"net/http"
	"time"

	"lakehouse/internal/domain"
)

type loginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// login handles POST /api/v1/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if h.svc.Auth == nil {
		h.writeError(w, r, domain.ErrNotFound("Local login is disabled"))
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	tok, err := h.svc.Auth.Login(r.Context(), req.Nickname, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: tok.Token, ExpiresAt: tok.ExpiresAt})
}
