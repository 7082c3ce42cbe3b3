package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// PlayerRepo handles player database operations.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo creates a PlayerRepo.
func NewPlayerRepo(db *sql.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Create registers a user in a game. The (user_id, game_id) unique
// constraint reports duplicate registrations.
func (r *PlayerRepo) Create(ctx context.Context, gameID, userID int64, name string) (*model.Player, error) {
	var p model.Player
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO players (game_id, user_id, name, status, online, score)
		 VALUES ($1, $2, $3, 'Active', TRUE, 0)
		 RETURNING id, game_id, user_id, name, status, online, score`,
		gameID, userID, name,
	).Scan(&p.ID, &p.GameID, &p.UserID, &p.Name, &p.Status, &p.Online, &p.Score)
	if err != nil {
		return nil, wrapErr("create player", err)
	}
	return &p, nil
}

// Get returns a player by ID, or (nil, nil).
func (r *PlayerRepo) Get(ctx context.Context, id int64) (*model.Player, error) {
	var p model.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, user_id, name, status, online, score FROM players WHERE id = $1`, id,
	).Scan(&p.ID, &p.GameID, &p.UserID, &p.Name, &p.Status, &p.Online, &p.Score)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

// ListByGame returns the game's players ordered by status descending
// then score descending, so the Winner sorts first.
func (r *PlayerRepo) ListByGame(ctx context.Context, gameID int64) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, user_id, name, status, online, score
		 FROM players WHERE game_id = $1
		 ORDER BY status DESC, score DESC, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.Name, &p.Status, &p.Online, &p.Score); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Scored atomically increments the player's score.
func (r *PlayerRepo) Scored(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE players SET score = score + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("player scored: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("player scored: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("player scored: %w", repository.ErrNotFound)
	}
	return nil
}

// Patch applies a partial update to a player.
func (r *PlayerRepo) Patch(ctx context.Context, id int64, p repository.PlayerPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Online != nil {
		add("online", *p.Online)
	}
	if p.Score != nil {
		add("score", *p.Score)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE players SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("patch player", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch player: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patch player: %w", repository.ErrNotFound)
	}
	return nil
}
