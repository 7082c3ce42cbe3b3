package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/auth"
	"github.com/vkurushin/wordchain/internal/repository"
)

// AuthHandler handles admin login and token refresh.
type AuthHandler struct {
	jwtMgr *auth.JWTManager
	admins repository.AdminRepository
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtMgr *auth.JWTManager, admins repository.AdminRepository) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, admins: admins}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, err := h.admins.GetByEmail(r.Context(), req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up admin")
		writeError(w, http.StatusInternalServerError, "failed to look up admin")
		return
	}
	if admin == nil || !auth.CheckPassword(admin.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(admin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(claims.AdminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	adminID := auth.AdminIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]int64{"admin_id": adminID})
}
