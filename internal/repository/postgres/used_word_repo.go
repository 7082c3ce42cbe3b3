package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vkurushin/wordchain/internal/model"
)

// UsedWordRepo tracks words already played in a game.
type UsedWordRepo struct {
	db *sql.DB
}

// NewUsedWordRepo creates a UsedWordRepo.
func NewUsedWordRepo(db *sql.DB) *UsedWordRepo {
	return &UsedWordRepo{db: db}
}

// Create records a played word.
func (r *UsedWordRepo) Create(ctx context.Context, title string, gameID int64) (*model.UsedWord, error) {
	var u model.UsedWord
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO usedwords (title, game_id) VALUES ($1, $2)
		 RETURNING id, game_id, title`,
		title, gameID,
	).Scan(&u.ID, &u.GameID, &u.Title)
	if err != nil {
		return nil, wrapErr("create used word", err)
	}
	return &u, nil
}

// ListByGame returns the words played in a game, in play order.
func (r *UsedWordRepo) ListByGame(ctx context.Context, gameID int64) ([]model.UsedWord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, title FROM usedwords WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list used words: %w", err)
	}
	defer rows.Close()

	var words []model.UsedWord
	for rows.Next() {
		var u model.UsedWord
		if err := rows.Scan(&u.ID, &u.GameID, &u.Title); err != nil {
			return nil, fmt.Errorf("scan used word: %w", err)
		}
		words = append(words, u)
	}
	return words, rows.Err()
}
