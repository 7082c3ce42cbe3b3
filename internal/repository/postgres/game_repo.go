package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// GameRepo handles game database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

const gameColumns = `id, peer_id, setting_id, status, moves_order, current_move, last_word, vote_word, event_timestamp, elapsed_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*model.Game, error) {
	var (
		g         model.Game
		movesOrd  sql.NullString
		current   sql.NullInt64
		lastWord  sql.NullString
		voteWord  sql.NullString
		eventTime sql.NullTime
	)
	err := row.Scan(&g.ID, &g.PeerID, &g.SettingID, &g.Status, &movesOrd, &current, &lastWord, &voteWord, &eventTime, &g.ElapsedTime)
	if err != nil {
		return nil, err
	}
	if movesOrd.Valid {
		g.MovesOrder = &movesOrd.String
	}
	if current.Valid {
		g.CurrentMove = &current.Int64
	}
	if lastWord.Valid {
		g.LastWord = &lastWord.String
	}
	if voteWord.Valid {
		g.VoteWord = &voteWord.String
	}
	if eventTime.Valid {
		t := eventTime.Time
		g.EventTimestamp = &t
	}
	return &g, nil
}

// Create inserts a new game in status init with empty turn fields.
func (r *GameRepo) Create(ctx context.Context, settingID, peerID int64) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO games (setting_id, peer_id) VALUES ($1, $2)
		 RETURNING `+gameColumns,
		settingID, peerID,
	)
	g, err := scanGame(row)
	if err != nil {
		return nil, wrapErr("create game", err)
	}
	if err := r.attach(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// GetByID returns a game by ID with its setting and players, or (nil, nil).
func (r *GameRepo) GetByID(ctx context.Context, id int64) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if err := r.attach(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListActive returns every game whose status is not finished, with
// settings and players loaded.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE status <> 'finished' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range games {
		if err := r.attach(ctx, &games[i]); err != nil {
			return nil, err
		}
	}
	return games, nil
}

// List returns games filtered by peer and/or status, oldest event first.
func (r *GameRepo) List(ctx context.Context, peerID *int64, status *string) ([]model.Game, error) {
	where := []string{}
	args := []any{}
	if peerID != nil {
		args = append(args, *peerID)
		where = append(where, fmt.Sprintf("peer_id = $%d", len(args)))
	}
	if status != nil {
		args = append(args, *status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + gameColumns + ` FROM games`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY event_timestamp NULLS FIRST, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// LastFinishedByPeer returns the most recently finished game for a
// room, with players loaded, or (nil, nil).
func (r *GameRepo) LastFinishedByPeer(ctx context.Context, peerID int64) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE peer_id = $1 AND status = 'finished'
		 ORDER BY event_timestamp DESC NULLS LAST, id DESC LIMIT 1`, peerID)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last finished game: %w", err)
	}
	if err := r.attach(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Patch applies a partial update to a game.
func (r *GameRepo) Patch(ctx context.Context, id int64, p repository.GamePatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.SettingID != nil {
		add("setting_id", *p.SettingID)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.MovesOrder != nil {
		add("moves_order", *p.MovesOrder)
	}
	if p.CurrentMove != nil {
		add("current_move", *p.CurrentMove)
	}
	if p.LastWord != nil {
		add("last_word", *p.LastWord)
	}
	if p.VoteWord != nil {
		add("vote_word", *p.VoteWord)
	}
	if p.SetVoteWordNil {
		sets = append(sets, "vote_word = NULL")
	}
	if p.EventTimestamp != nil {
		add("event_timestamp", *p.EventTimestamp)
	}
	if p.ElapsedTime != nil {
		add("elapsed_time", *p.ElapsedTime)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE games SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("patch game", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch game: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("patch game: %w", repository.ErrNotFound)
	}
	return nil
}

// Clear atomically deletes the game's players and used words and
// resets every turn field, returning the reset game.
func (r *GameRepo) Clear(ctx context.Context, id int64) (*model.Game, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE game_id = $1`, id); err != nil {
		return nil, fmt.Errorf("clear players: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM usedwords WHERE game_id = $1`, id); err != nil {
		return nil, fmt.Errorf("clear used words: %w", err)
	}
	row := tx.QueryRowContext(ctx,
		`UPDATE games
		 SET status = 'init', moves_order = NULL, event_timestamp = NULL,
		     current_move = NULL, elapsed_time = 0, last_word = NULL, vote_word = NULL
		 WHERE id = $1
		 RETURNING `+gameColumns, id)
	g, err := scanGame(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("clear game: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("clear game: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit clear: %w", err)
	}
	if err := r.attach(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// attach loads the game's setting and players.
func (r *GameRepo) attach(ctx context.Context, g *model.Game) error {
	var s model.Setting
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, timeout FROM settings WHERE id = $1`, g.SettingID,
	).Scan(&s.ID, &s.Title, &s.Timeout)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("load setting: %w", err)
	}
	if err == nil {
		g.Setting = &s
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, user_id, name, status, online, score
		 FROM players WHERE game_id = $1 ORDER BY id`, g.ID)
	if err != nil {
		return fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.Name, &p.Status, &p.Online, &p.Score); err != nil {
			return fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	g.Players = players
	return rows.Err()
}
