package httpapi

import (
	"net/http"
	"strings"
	"time"

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/obs"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    userPayload `json:"user"`
	Token   string      `json:"token"`
}

type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	addr := clientIP(r)
	if a.gw.Blocked(addr) {
		obs.CountAuthFailure("blocked")
		_ = audit.LogEvent(r.Context(), "auth.blocked_address.attempt", map[string]any{
			"address": addr,
		})
		writeError(w, r, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := auth.Authenticate(r.Context(), a.users, email, req.Password)
	if err != nil {
		// Same response whether the email is unknown or the password wrong.
		a.gw.Limiter().RecordFailure(r.Context(), addr)
		obs.CountAuthFailure("bad_credentials")
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	a.gw.Limiter().RecordSuccess(addr)

	token, err := auth.GenerateToken(user.ID, a.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"user":       user.ID,
		"expires_at": time.Now().UTC().Add(a.tokenTTL).Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    userPayload{ID: user.ID, Email: user.Email},
		Token:   token,
	})
}
