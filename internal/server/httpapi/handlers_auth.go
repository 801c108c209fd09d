package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/okarpov/articles-api/internal/errs"
	"github.com/okarpov/articles-api/internal/service"
	"github.com/okarpov/articles-api/internal/token"
)

// AuthHandler wires the auth service into HTTP endpoints.
type AuthHandler struct {
	auth   service.AuthService
	issuer *token.Issuer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth service.AuthService, issuer *token.Issuer) *AuthHandler {
	return &AuthHandler{auth: auth, issuer: issuer}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tokens, err := h.auth.Register(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err, "Not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusCreated, tokens)
}

// Login handles POST /auth/login. Failures are deliberately uniform: the
// response never tells which of login/password was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tokens, err := h.auth.Login(r.Context(), req.Login, req.Password, remoteIP(r))
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServiceError(w, err, "Not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh. The refresh token travels in the
// Refresh header (with or without a Bearer scheme); it must verify as a JWT
// before the rotation is attempted against the stored digest.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r.Header.Get("Refresh"))
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Refresh token is missing")
		return
	}
	userID, _, err := h.issuer.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tokens, err := h.auth.RefreshTokens(r.Context(), userID, raw)
	if err != nil {
		writeServiceError(w, err, "Not found", "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /auth/logout (bearer access token required).
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.auth.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, err, "Not found", "Forbidden")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// remoteIP feeds the login rate limiter; RealIP middleware has already
// unwrapped proxy headers into RemoteAddr. The ephemeral port is stripped so
// attempts from one host share a limiter key across connections.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
