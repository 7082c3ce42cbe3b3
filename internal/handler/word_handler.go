package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vkurushin/wordchain/internal/repository"
)

// WordHandler handles dictionary word endpoints.
type WordHandler struct {
	words repository.WordRepository
}

// NewWordHandler creates a WordHandler.
func NewWordHandler(words repository.WordRepository) *WordHandler {
	return &WordHandler{words: words}
}

// ListWords handles GET /api/v1/words
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	var isCorrect *bool
	if v := r.URL.Query().Get("is_correct"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_correct parameter")
			return
		}
		isCorrect = &b
	}

	words, err := h.words.List(r.Context(), isCorrect)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if words == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// CreateWord handles POST /api/v1/words
func (h *WordHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string `json:"title"`
		IsCorrect bool   `json:"is_correct"`
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

	word, err := h.words.Create(r.Context(), req.Title, req.IsCorrect)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			writeError(w, http.StatusConflict, "word already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

// GetWordByTitle handles GET /api/v1/words/title/{title}
func (h *WordHandler) GetWordByTitle(w http.ResponseWriter, r *http.Request) {
	title := strings.ToLower(r.PathValue("title"))
	word, err := h.words.GetByTitle(r.Context(), title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if word == nil {
		writeError(w, http.StatusNotFound, "word not found")
		return
	}
	writeJSON(w, http.StatusOK, word)
}

// UpdateWord handles PATCH /api/v1/words/{id}
func (h *WordHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid word id")
		return
	}

	var req struct {
		Title     *string `json:"title,omitempty"`
		IsCorrect *bool   `json:"is_correct,omitempty"`
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

	word, err := h.words.Patch(r.Context(), id, req.Title, req.IsCorrect)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "word not found")
			return
		}
		if errors.Is(err, repository.ErrUniqueViolation) {
			writeError(w, http.StatusConflict, "word already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/v1/words/{id}
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid word id")
		return
	}

	if err := h.words.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "word not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
