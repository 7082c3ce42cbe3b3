package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vkurushin/wordchain/internal/model"
)

// VoteRepo handles vote database operations.
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo creates a VoteRepo.
func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Create records a player's vote for a pending word. The
// (player_id, title) unique constraint reports duplicate votes.
func (r *VoteRepo) Create(ctx context.Context, gameID, playerID int64, title string, isCorrect bool) (*model.Vote, error) {
	var v model.Vote
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO votes (game_id, player_id, title, is_correct)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, game_id, player_id, title, is_correct`,
		gameID, playerID, title, isCorrect,
	).Scan(&v.ID, &v.GameID, &v.PlayerID, &v.Title, &v.IsCorrect)
	if err != nil {
		return nil, wrapErr("create vote", err)
	}
	return &v, nil
}

// ListByGame returns the game's votes for a given word title.
func (r *VoteRepo) ListByGame(ctx context.Context, gameID int64, title string) ([]model.Vote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, player_id, title, is_correct
		 FROM votes WHERE game_id = $1 AND title = $2 ORDER BY id`, gameID, title)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		var v model.Vote
		if err := rows.Scan(&v.ID, &v.GameID, &v.PlayerID, &v.Title, &v.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
