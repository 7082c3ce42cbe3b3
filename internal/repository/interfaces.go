// Package repository declares the persistence interfaces consumed by
// the engine, the coordinator and the admin API, together with the
// error conditions implementations must surface.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vkurushin/wordchain/internal/model"
)

// Typed store conditions. Lookups that legitimately miss return
// (nil, nil) instead of ErrNotFound; ErrNotFound is reserved for
// operations that require the row to exist (patches, deletes).
var (
	ErrNotFound            = errors.New("not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// GamePatch is a partial update of a game's mutable fields. Nil fields
// are left untouched. Set* flags force NULL into nullable columns,
// which plain nil pointers cannot express.
type GamePatch struct {
	SettingID      *int64
	Status         *string
	MovesOrder     *string
	CurrentMove    *int64
	LastWord       *string
	VoteWord       *string
	SetVoteWordNil bool
	EventTimestamp *time.Time
	ElapsedTime    *int64
}

// PlayerPatch is a partial update of a player.
type PlayerPatch struct {
	Status *string
	Online *bool
	Score  *int64
}

// GameRepository defines game data operations.
type GameRepository interface {
	// Create inserts a game in status init with empty turn fields.
	Create(ctx context.Context, settingID, peerID int64) (*model.Game, error)
	// GetByID returns a game with its setting and players eagerly
	// loaded, or (nil, nil).
	GetByID(ctx context.Context, id int64) (*model.Game, error)
	// ListActive returns every game whose status is not finished,
	// with settings and players loaded. Used at coordinator boot.
	ListActive(ctx context.Context) ([]model.Game, error)
	// List returns games filtered by peer and/or status, ordered by
	// event timestamp.
	List(ctx context.Context, peerID *int64, status *string) ([]model.Game, error)
	// LastFinishedByPeer returns the most recently finished game for a
	// room, or (nil, nil).
	LastFinishedByPeer(ctx context.Context, peerID int64) (*model.Game, error)
	// Patch applies a partial update.
	Patch(ctx context.Context, id int64, p GamePatch) error
	// Clear atomically deletes the game's players and used words and
	// resets every turn field to its initial value, returning the
	// reset game.
	Clear(ctx context.Context, id int64) (*model.Game, error)
}

// PlayerRepository defines player data operations.
type PlayerRepository interface {
	// Create registers a user in a game with status Active, online,
	// score 0. Duplicate (user_id, game_id) surfaces
	// ErrUniqueViolation; a missing game surfaces
	// ErrForeignKeyViolation.
	Create(ctx context.Context, gameID, userID int64, name string) (*model.Player, error)
	Get(ctx context.Context, id int64) (*model.Player, error)
	// ListByGame returns the game's players ordered by status
	// descending then score descending, so the Winner sorts first.
	ListByGame(ctx context.Context, gameID int64) ([]model.Player, error)
	// Scored atomically increments the player's score.
	Scored(ctx context.Context, id int64) error
	Patch(ctx context.Context, id int64, p PlayerPatch) error
}

// WordRepository defines dictionary word operations.
type WordRepository interface {
	// Create inserts a word; the title is stored as given. A duplicate
	// title surfaces ErrUniqueViolation.
	Create(ctx context.Context, title string, isCorrect bool) (*model.Word, error)
	GetByTitle(ctx context.Context, title string) (*model.Word, error)
	GetByID(ctx context.Context, id int64) (*model.Word, error)
	// List returns words, optionally filtered by is_correct.
	List(ctx context.Context, isCorrect *bool) ([]model.Word, error)
	Patch(ctx context.Context, id int64, title *string, isCorrect *bool) (*model.Word, error)
	Delete(ctx context.Context, id int64) error
}

// CityRepository defines city reference-list operations.
type CityRepository interface {
	// GetByTitle matches the canonical capitalized form exactly;
	// callers capitalize first.
	GetByTitle(ctx context.Context, title string) (*model.City, error)
	List(ctx context.Context) ([]model.City, error)
}

// SettingRepository defines game mode operations.
type SettingRepository interface {
	Create(ctx context.Context, title string, timeout int64) (*model.Setting, error)
	GetByTitle(ctx context.Context, title string) (*model.Setting, error)
	GetByID(ctx context.Context, id int64) (*model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Patch(ctx context.Context, id int64, title *string, timeout *int64) (*model.Setting, error)
	Delete(ctx context.Context, id int64) error
}

// UsedWordRepository tracks words already played in a game.
type UsedWordRepository interface {
	Create(ctx context.Context, title string, gameID int64) (*model.UsedWord, error)
	ListByGame(ctx context.Context, gameID int64) ([]model.UsedWord, error)
}

// VoteRepository defines vote operations for pending words.
type VoteRepository interface {
	// Create records a vote; a second vote by the same player for the
	// same title surfaces ErrUniqueViolation.
	Create(ctx context.Context, gameID, playerID int64, title string, isCorrect bool) (*model.Vote, error)
	ListByGame(ctx context.Context, gameID int64, title string) ([]model.Vote, error)
}

// AdminRepository defines admin account operations.
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	// Create stores an admin with an already-hashed password.
	Create(ctx context.Context, email, passwordHash string) (*model.Admin, error)
}
