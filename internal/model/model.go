package model

import (
	"strconv"
	"time"
)

// Game statuses.
const (
	StatusInit         = "init"
	StatusRegistration = "registration"
	StatusStarted      = "started"
	StatusVoteWord     = "vote_word"
	StatusFinished     = "finished"
)

// Player statuses.
const (
	PlayerActive = "Active"
	PlayerWinner = "Winner"
)

// Word is a dictionary entry. Entries with IsCorrect=false form the
// black list of confirmed non-words.
type Word struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IsCorrect bool   `json:"is_correct"`
}

// City is a reference entry for the cities game mode, stored in
// canonical capitalized form.
type City struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	RegionID  *int64 `json:"id_region,omitempty"`
	CountryID *int64 `json:"id_country,omitempty"`
}

// Setting is a game mode binding a per-turn timeout (seconds) to a
// dictionary source. Recognized titles: "слова" and "города".
type Setting struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Timeout int64  `json:"timeout"`
}

// Game is one game instance in a chat room. Nullable columns map to
// pointers; they are empty outside the statuses that use them.
type Game struct {
	ID             int64      `json:"id"`
	PeerID         int64      `json:"peer_id"`
	SettingID      int64      `json:"setting_id"`
	Status         string     `json:"status"`
	MovesOrder     *string    `json:"moves_order,omitempty"`
	CurrentMove    *int64     `json:"current_move,omitempty"`
	LastWord       *string    `json:"last_word,omitempty"`
	VoteWord       *string    `json:"vote_word,omitempty"`
	EventTimestamp *time.Time `json:"event_timestamp,omitempty"`
	ElapsedTime    int64      `json:"elapsed_time"`
	Setting        *Setting   `json:"setting,omitempty"`
	Players        []Player   `json:"players,omitempty"`
}

// PlayerByUserID returns the game's player with the given platform user
// id, or nil.
func (g *Game) PlayerByUserID(userID int64) *Player {
	for i := range g.Players {
		if g.Players[i].UserID == userID {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerName returns the display name for a platform user id, or the
// synthetic fallback when the user is not registered in this game.
func (g *Game) PlayerName(userID int64) string {
	if p := g.PlayerByUserID(userID); p != nil {
		return p.Name
	}
	return SyntheticName(userID)
}

// Player is a participant of one game.
type Player struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"game_id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Online bool   `json:"online"`
	Score  int64  `json:"score"`
}

// UsedWord is a word already played in a game; repeats are rejected.
type UsedWord struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"game_id"`
	Title  string `json:"title"`
}

// Vote is one player's verdict on a word pending crowd validation.
// Unique per (player_id, title).
type Vote struct {
	ID        int64  `json:"id"`
	GameID    int64  `json:"game_id"`
	PlayerID  int64  `json:"player_id"`
	Title     string `json:"title"`
	IsCorrect bool   `json:"is_correct"`
}

// Admin is an API administrator. Password holds a bcrypt hash.
type Admin struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// Update is one inbound chat event: a message in a room.
type Update struct {
	PeerID int64  `json:"peer_id"`
	UserID int64  `json:"user_id"`
	Body   string `json:"body"`
}

// ChatMember is a conversation participant as reported by the chat
// platform.
type ChatMember struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// SyntheticName is the display-name fallback used when the chat
// platform does not resolve a member.
func SyntheticName(userID int64) string {
	return "id_" + strconv.FormatInt(userID, 10)
}
