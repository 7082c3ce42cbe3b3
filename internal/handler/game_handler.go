package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// GameHandler handles game and player inspection endpoints. Game flow
// belongs to the room engines; the API only reads state and patches
// rows for manual intervention.
type GameHandler struct {
	games   repository.GameRepository
	players repository.PlayerRepository
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(games repository.GameRepository, players repository.PlayerRepository) *GameHandler {
	return &GameHandler{games: games, players: players}
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	var peerID *int64
	if v := r.URL.Query().Get("peer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid peer_id parameter")
			return
		}
		peerID = &id
	}
	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	games, err := h.games.List(r.Context(), peerID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := h.games.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SettingID int64 `json:"setting_id"`
		PeerID    int64 `json:"peer_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SettingID == 0 || req.PeerID == 0 {
		writeError(w, http.StatusBadRequest, "setting_id and peer_id are required")
		return
	}

	game, err := h.games.Create(r.Context(), req.SettingID, req.PeerID)
	if err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			writeError(w, http.StatusNotFound, "setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGamePlayers handles GET /api/v1/games/{id}/players
func (h *GameHandler) ListGamePlayers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := h.games.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	players, err := h.players.ListByGame(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if players == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// UpdatePlayer handles PATCH /api/v1/players/{id}
func (h *GameHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	var req struct {
		Status *string `json:"status,omitempty"`
		Online *bool   `json:"online,omitempty"`
		Score  *int64  `json:"score,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != nil && *req.Status != model.PlayerActive && *req.Status != model.PlayerWinner {
		writeError(w, http.StatusBadRequest, "invalid player status")
		return
	}

	patch := repository.PlayerPatch{Status: req.Status, Online: req.Online, Score: req.Score}
	if err := h.players.Patch(r.Context(), id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	player, err := h.players.Get(r.Context(), id)
	if err != nil || player == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	writeJSON(w, http.StatusOK, player)
}
