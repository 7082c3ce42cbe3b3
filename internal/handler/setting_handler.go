package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vkurushin/wordchain/internal/repository"
)

// SettingHandler handles game mode endpoints.
type SettingHandler struct {
	settings repository.SettingRepository
}

// NewSettingHandler creates a SettingHandler.
func NewSettingHandler(settings repository.SettingRepository) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// ListSettings handles GET /api/v1/settings
func (h *SettingHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if settings == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// CreateSetting handles POST /api/v1/settings
func (h *SettingHandler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Timeout int64  `json:"timeout"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.ToLower(strings.TrimSpace(req.Title))
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Timeout <= 0 {
		writeError(w, http.StatusBadRequest, "timeout must be a positive number of seconds")
		return
	}

	setting, err := h.settings.Create(r.Context(), req.Title, req.Timeout)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			writeError(w, http.StatusConflict, "setting already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, setting)
}

// GetSetting handles GET /api/v1/settings/{id}
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid setting id")
		return
	}

	setting, err := h.settings.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if setting == nil {
		writeError(w, http.StatusNotFound, "setting not found")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// UpdateSetting handles PATCH /api/v1/settings/{id}
func (h *SettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid setting id")
		return
	}

	var req struct {
		Title   *string `json:"title,omitempty"`
		Timeout *int64  `json:"timeout,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		lower := strings.ToLower(strings.TrimSpace(*req.Title))
		if lower == "" {
			writeError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		req.Title = &lower
	}
	if req.Timeout != nil && *req.Timeout <= 0 {
		writeError(w, http.StatusBadRequest, "timeout must be a positive number of seconds")
		return
	}

	setting, err := h.settings.Patch(r.Context(), id, req.Title, req.Timeout)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		if errors.Is(err, repository.ErrUniqueViolation) {
			writeError(w, http.StatusConflict, "setting already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// DeleteSetting handles DELETE /api/v1/settings/{id}
func (h *SettingHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid setting id")
		return
	}

	if err := h.settings.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
