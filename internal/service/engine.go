package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/vkurushin/wordchain/internal/logger"
	"github.com/vkurushin/wordchain/internal/messages"
	"github.com/vkurushin/wordchain/internal/metrics"
	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// Setting titles double as the chat commands that start a game.
const (
	SettingWords  = "слова"
	SettingCities = "города"
)

// Chat keywords, matched against the lowercased message body.
const (
	keywordJoin   = "я"
	keywordYes    = "да"
	keywordNo     = "нет"
	keywordStatus = "!статус"
)

// seedWord anchors the chain when the dictionary has nothing to offer.
const seedWord = "Орел"

const mailboxSize = 16

// ErrEngineStopped is returned by Dispatch after the room worker has
// exited.
var ErrEngineStopped = errors.New("room engine stopped")

// Stores bundles the repositories the game engines read and write.
type Stores struct {
	Games     repository.GameRepository
	Players   repository.PlayerRepository
	Words     repository.WordRepository
	Cities    repository.CityRepository
	Settings  repository.SettingRepository
	UsedWords repository.UsedWordRepository
	Votes     repository.VoteRepository
}

// Gateway sends messages into a chat room and resolves its members.
type Gateway interface {
	SendMessage(ctx context.Context, peerID int64, text string) error
	GetConversationMembers(ctx context.Context, peerID int64) ([]model.ChatMember, error)
}

// envelope is one unit of room work: an inbound update, a timer expiry
// or the shutdown signal.
type envelope struct {
	ctx      context.Context
	update   *model.Update
	done     chan error
	timerSeq int64
	shutdown bool
}

// Engine runs one room's game as a single-threaded actor. All game
// state lives on the worker goroutine; the mailbox serializes updates,
// timer expiries and shutdown, so a room never processes two events at
// once.
type Engine struct {
	peerID    int64
	stores    Stores
	gateway   Gateway
	broadcast Broadcaster
	log       zerolog.Logger

	mbox chan envelope
	done chan struct{}

	finished atomic.Bool

	// Worker-owned; never touched outside the room goroutine.
	game     *model.Game
	timer    *turnTimer
	timerSeq int64
}

// NewEngine wraps a live game in a room actor. Call Start to begin
// processing.
func NewEngine(game *model.Game, stores Stores, gateway Gateway, broadcast Broadcaster) *Engine {
	return &Engine{
		peerID:    game.PeerID,
		stores:    stores,
		gateway:   gateway,
		broadcast: broadcast,
		log:       logger.ForRoom(game.PeerID),
		game:      game,
		mbox:      make(chan envelope, mailboxSize),
		done:      make(chan struct{}),
	}
}

// Start launches the room worker.
func (e *Engine) Start() {
	go e.loop()
}

// Finished reports whether this room's game has ended and the engine
// should be replaced.
func (e *Engine) Finished() bool {
	return e.finished.Load()
}

// Dispatch hands one update to the room worker and waits until it has
// been fully processed.
func (e *Engine) Dispatch(ctx context.Context, upd model.Update) error {
	env := envelope{ctx: ctx, update: &upd, done: make(chan error, 1)}
	select {
	case e.mbox <- env:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-env.done:
		return err
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the room worker. An outstanding timer persists its
// elapsed time first, so a later boot can resume the countdown. Blocks
// until the worker exits.
func (e *Engine) Shutdown() {
	select {
	case e.mbox <- envelope{shutdown: true}:
		<-e.done
	case <-e.done:
	}
}

// Recover resumes an interrupted game: it re-announces where play
// stood, arms a timer for the unspent part of the window, then resets
// the stored elapsed time. The armed timer remembers the part already
// burned, so another shutdown persists the cumulative total. Must be
// called before Start.
func (e *Engine) Recover(ctx context.Context) error {
	switch e.game.Status {
	case model.StatusInit:
		return nil
	case model.StatusRegistration:
		e.send(ctx, messages.RegistrationPrompt(e.game.Setting.Title, e.remaining()))
		e.armTimer(e.remaining())
	case model.StatusStarted:
		if e.game.CurrentMove == nil {
			return fmt.Errorf("game %d started without current move", e.game.ID)
		}
		e.send(ctx, messages.PlayerMove(e.game.PlayerName(*e.game.CurrentMove), strVal(e.game.LastWord), e.remaining()))
		e.armTimer(e.remaining())
	case model.StatusVoteWord:
		e.send(ctx, messages.VotePrompt(strVal(e.game.VoteWord), e.remaining()))
		e.armTimer(e.remaining())
	}

	zero := int64(0)
	if err := e.stores.Games.Patch(ctx, e.game.ID, repository.GamePatch{ElapsedTime: &zero}); err != nil {
		return fmt.Errorf("reset elapsed time: %w", err)
	}
	e.game.ElapsedTime = 0
	return nil
}

func (e *Engine) loop() {
	defer close(e.done)
	for env := range e.mbox {
		switch {
		case env.shutdown:
			if e.timer != nil {
				e.timer.Cancel(CancelShutdown)
				e.timer = nil
			}
			return
		case env.timerSeq != 0:
			e.handleTimer(env.timerSeq)
		default:
			env.done <- e.handleUpdate(env.ctx, *env.update)
		}
	}
}

// handleTimer routes a timer expiry by game status. Expiries from
// timers that were cancelled after firing are dropped.
func (e *Engine) handleTimer(seq int64) {
	if e.timer == nil || e.timer.seq != seq {
		return
	}
	e.timer = nil
	metrics.TimerFires.Inc()

	ctx := context.Background()
	switch e.game.Status {
	case model.StatusRegistration:
		e.checkRegistration(ctx)
	case model.StatusStarted:
		e.timeoutWord(ctx)
	case model.StatusVoteWord:
		e.checkVote(ctx)
	default:
		e.log.Warn().Str("status", e.game.Status).Msg("Timer fired in unexpected status")
	}
}

func (e *Engine) handleUpdate(ctx context.Context, upd model.Update) error {
	body := strings.ToLower(upd.Body)

	// Pick up changes made through the admin API before acting.
	if err := e.reload(ctx); err != nil {
		return err
	}

	if body == keywordStatus {
		return e.sendStatus(ctx)
	}

	switch e.game.Status {
	case model.StatusInit:
		return e.handleInit(ctx, body)
	case model.StatusRegistration:
		return e.handleRegistration(ctx, upd.UserID, body)
	case model.StatusStarted:
		return e.handlePlaying(ctx, upd.UserID, body)
	case model.StatusVoteWord:
		return e.handleVote(ctx, upd.UserID, body)
	case model.StatusFinished:
		// The coordinator replaces this engine on the next update.
		return nil
	default:
		return fmt.Errorf("unknown game status %q", e.game.Status)
	}
}

// handleInit waits for a setting title and opens registration.
func (e *Engine) handleInit(ctx context.Context, body string) error {
	if body != SettingWords && body != SettingCities {
		e.send(ctx, messages.StartHint())
		return nil
	}

	setting, err := e.stores.Settings.GetByTitle(ctx, body)
	if err != nil {
		return fmt.Errorf("load setting %q: %w", body, err)
	}
	if setting == nil {
		return fmt.Errorf("setting %q not seeded", body)
	}

	now := time.Now()
	status := model.StatusRegistration
	patch := repository.GamePatch{
		SettingID:      &setting.ID,
		Status:         &status,
		EventTimestamp: &now,
	}
	if err := e.stores.Games.Patch(ctx, e.game.ID, patch); err != nil {
		return fmt.Errorf("open registration: %w", err)
	}
	if err := e.reload(ctx); err != nil {
		return err
	}

	e.send(ctx, messages.RegistrationPrompt(setting.Title, setting.Timeout))
	e.armTimer(e.remaining())
	return nil
}

// handleRegistration records joins; any other message repeats the
// prompt.
func (e *Engine) handleRegistration(ctx context.Context, userID int64, body string) error {
	if body != keywordJoin {
		e.send(ctx, messages.RegistrationPrompt(e.game.Setting.Title, e.game.Setting.Timeout))
		return nil
	}

	name := e.memberName(ctx, userID)
	_, err := e.stores.Players.Create(ctx, e.game.ID, userID, name)
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		e.send(ctx, messages.RegistrationConflict(name))
	case err != nil:
		e.log.Error().Err(err).Int64("user_id", userID).Msg("Player registration failed")
		e.send(ctx, messages.RegistrationError(name))
	default:
		e.send(ctx, messages.RegistrationAck(name))
	}
	return nil
}

// checkRegistration fires when the registration window closes: two or
// more players start the game, fewer reset the room.
func (e *Engine) checkRegistration(ctx context.Context) {
	if err := e.reload(ctx); err != nil {
		e.log.Error().Err(err).Msg("Registration check failed")
		return
	}
	zero := int64(0)
	if err := e.stores.Games.Patch(ctx, e.game.ID, repository.GamePatch{ElapsedTime: &zero}); err != nil {
		e.log.Error().Err(err).Msg("Failed to reset elapsed time")
	}

	if len(e.game.Players) < 2 {
		game, err := e.stores.Games.Clear(ctx, e.game.ID)
		if err != nil {
			e.log.Error().Err(err).Msg("Failed to reset game")
			return
		}
		e.game = game
		e.send(ctx, messages.RegistrationFailed())
		return
	}

	e.send(ctx, messages.RegistrationSuccess())
	if err := e.firstMove(ctx); err != nil {
		e.log.Error().Err(err).Msg("Failed to start game")
	}
}

// firstMove shuffles the move order, opens the chain with a random
// dictionary word and hands the turn to the first player.
func (e *Engine) firstMove(ctx context.Context) error {
	ids := make([]string, 0, len(e.game.Players))
	for _, p := range e.game.Players {
		ids = append(ids, strconv.FormatInt(p.UserID, 10))
	}
	gameShuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	movesOrder := strings.Join(ids, " ")

	word, err := e.dictionary().Pick(ctx)
	if err != nil {
		return fmt.Errorf("pick first word: %w", err)
	}
	if word == "" {
		if _, err := e.stores.Words.Create(ctx, seedWord, true); err != nil && !errors.Is(err, repository.ErrUniqueViolation) {
			return fmt.Errorf("seed word list: %w", err)
		}
		word = seedWord
	}
	if _, err := e.stores.UsedWords.Create(ctx, word, e.game.ID); err != nil {
		return fmt.Errorf("record first word: %w", err)
	}

	first, err := strconv.ParseInt(ids[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parse move order: %w", err)
	}

	now := time.Now()
	status := model.StatusStarted
	patch := repository.GamePatch{
		Status:         &status,
		MovesOrder:     &movesOrder,
		CurrentMove:    &first,
		LastWord:       &word,
		EventTimestamp: &now,
	}
	if err := e.stores.Games.Patch(ctx, e.game.ID, patch); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	if err := e.reload(ctx); err != nil {
		return err
	}

	e.send(ctx, messages.PlayerMove(e.game.PlayerName(first), word, e.game.Setting.Timeout))
	e.armTimer(e.remaining())
	return nil
}

// handlePlaying validates the current player's submission; messages
// from anyone else just repeat whose turn it is.
func (e *Engine) handlePlaying(ctx context.Context, userID int64, body string) error {
	if e.game.CurrentMove == nil {
		return fmt.Errorf("game %d started without current move", e.game.ID)
	}
	if userID != *e.game.CurrentMove {
		e.send(ctx, messages.PlayerMove(e.game.PlayerName(*e.game.CurrentMove), strVal(e.game.LastWord), e.game.Setting.Timeout))
		return nil
	}
	return e.checkWord(ctx, body)
}

// checkWord runs the submission pipeline: repeat check, letter chain,
// then the dictionary verdict.
func (e *Engine) checkWord(ctx context.Context, word string) error {
	e.cancelTimer()

	name := e.game.PlayerName(*e.game.CurrentMove)

	used, err := e.stores.UsedWords.ListByGame(ctx, e.game.ID)
	if err != nil {
		return fmt.Errorf("list used words: %w", err)
	}
	for _, u := range used {
		if u.Title == word {
			metrics.WordVerdicts.WithLabelValues("used").Inc()
			e.send(ctx, messages.PlayerUsedWord(name, word))
			return e.nextPlayer(ctx, false, word)
		}
	}

	// A word that breaks the chain is still recorded as used.
	if _, err := e.stores.UsedWords.Create(ctx, word, e.game.ID); err != nil {
		return fmt.Errorf("record used word: %w", err)
	}

	if !chainsFrom(strVal(e.game.LastWord), word) {
		metrics.WordVerdicts.WithLabelValues("wrong_letter").Inc()
		e.send(ctx, messages.PlayerWordWrong(name, word, strVal(e.game.LastWord)))
		return e.nextPlayer(ctx, false, word)
	}

	dict := e.dictionary()
	verdict, err := dict.Check(ctx, word)
	if err != nil {
		return fmt.Errorf("check word %q: %w", word, err)
	}
	metrics.WordVerdicts.WithLabelValues(verdict.String()).Inc()

	switch verdict {
	case VerdictRejected:
		e.send(ctx, dict.RejectText(name, word))
		return e.nextPlayer(ctx, false, word)
	case VerdictUnknown:
		return e.startVote(ctx, word)
	default:
		return e.nextPlayer(ctx, true, word)
	}
}

// startVote suspends play while the room decides whether an unlisted
// word exists.
func (e *Engine) startVote(ctx context.Context, word string) error {
	now := time.Now()
	status := model.StatusVoteWord
	patch := repository.GamePatch{
		Status:         &status,
		VoteWord:       &word,
		EventTimestamp: &now,
	}
	if err := e.stores.Games.Patch(ctx, e.game.ID, patch); err != nil {
		return fmt.Errorf("open vote: %w", err)
	}
	if err := e.reload(ctx); err != nil {
		return err
	}

	e.send(ctx, messages.VotePrompt(word, e.game.Setting.Timeout))
	e.armTimer(e.remaining())
	return nil
}

// handleVote records да/нет verdicts from players other than the
// proposer.
func (e *Engine) handleVote(ctx context.Context, userID int64, body string) error {
	fromProposer := e.game.CurrentMove != nil && userID == *e.game.CurrentMove

	if body != keywordYes && body != keywordNo {
		if fromProposer {
			return nil
		}
		e.send(ctx, messages.VotePrompt(strVal(e.game.VoteWord), e.game.Setting.Timeout))
		return nil
	}
	if fromProposer {
		e.send(ctx, messages.VoteSelf(e.game.PlayerName(userID)))
		return nil
	}

	player := e.game.PlayerByUserID(userID)
	if player == nil {
		// Only registered players hold a vote.
		e.log.Debug().Int64("user_id", userID).Msg("Ignoring vote from non-player")
		return nil
	}

	_, err := e.stores.Votes.Create(ctx, e.game.ID, player.ID, strVal(e.game.VoteWord), body == keywordYes)
	switch {
	case errors.Is(err, repository.ErrUniqueViolation):
		e.send(ctx, messages.VoteConflict(player.Name))
	case err != nil:
		return fmt.Errorf("record vote: %w", err)
	default:
		e.send(ctx, messages.VoteAck(player.Name))
	}
	return nil
}

// checkVote fires when the voting window closes: it tallies the votes,
// persists the word's fate and resumes play.
func (e *Engine) checkVote(ctx context.Context) {
	zero := int64(0)
	if err := e.stores.Games.Patch(ctx, e.game.ID, repository.GamePatch{ElapsedTime: &zero}); err != nil {
		e.log.Error().Err(err).Msg("Failed to reset elapsed time")
	}

	word := strVal(e.game.VoteWord)
	votes, err := e.stores.Votes.ListByGame(ctx, e.game.ID, word)
	if err != nil {
		e.log.Error().Err(err).Msg("Failed to tally votes")
		return
	}
	var pos, neg int
	for _, v := range votes {
		if v.IsCorrect {
			pos++
		} else {
			neg++
		}
	}
	// Ties resolve in favour of the word.
	accepted := pos >= neg

	if _, err := e.stores.Words.Create(ctx, word, accepted); err != nil && !errors.Is(err, repository.ErrUniqueViolation) {
		e.log.Error().Err(err).Msg("Failed to persist voted word")
	}

	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	metrics.VoteOutcomes.WithLabelValues(outcome).Inc()
	e.send(ctx, messages.VoteResult(word, accepted))

	status := model.StatusStarted
	if err := e.stores.Games.Patch(ctx, e.game.ID, repository.GamePatch{Status: &status, SetVoteWordNil: true}); err != nil {
		e.log.Error().Err(err).Msg("Failed to close vote")
		return
	}
	if err := e.reload(ctx); err != nil {
		e.log.Error().Err(err).Msg("Failed to reload after vote")
		return
	}
	if err := e.nextPlayer(ctx, accepted, word); err != nil {
		e.log.Error().Err(err).Msg("Failed to advance after vote")
	}
}

// timeoutWord fires when the current player lets the turn clock run
// out.
func (e *Engine) timeoutWord(ctx context.Context) {
	if e.game.CurrentMove == nil {
		e.log.Error().Msg("Turn timeout with no current player")
		return
	}
	e.send(ctx, messages.PlayerTimeout(e.game.PlayerName(*e.game.CurrentMove)))
	zero := int64(0)
	if err := e.stores.Games.Patch(ctx, e.game.ID, repository.GamePatch{ElapsedTime: &zero}); err != nil {
		e.log.Error().Err(err).Msg("Failed to reset elapsed time")
	}
	if err := e.nextPlayer(ctx, false, ""); err != nil {
		e.log.Error().Err(err).Msg("Failed to advance turn")
	}
}

// nextPlayer advances the turn. On success the mover scores and word
// becomes the chain tail; on failure the mover leaves the move order.
// The successor is chosen from the order as it stood before removal.
func (e *Engine) nextPlayer(ctx context.Context, success bool, word string) error {
	order := strings.Fields(strVal(e.game.MovesOrder))
	current := strconv.FormatInt(*e.game.CurrentMove, 10)
	idx := indexOf(order, current)
	if idx < 0 {
		return fmt.Errorf("player %s not in move order", current)
	}
	nextID, err := strconv.ParseInt(order[(idx+1)%len(order)], 10, 64)
	if err != nil {
		return fmt.Errorf("parse move order: %w", err)
	}
	nextName := e.game.PlayerName(nextID)

	lastWord := strVal(e.game.LastWord)
	if success {
		player := e.game.PlayerByUserID(*e.game.CurrentMove)
		if player == nil {
			return fmt.Errorf("player %s missing from game", current)
		}
		if err := e.stores.Players.Scored(ctx, player.ID); err != nil {
			return fmt.Errorf("score player: %w", err)
		}
		lastWord = word
	} else {
		order = append(order[:idx], order[idx+1:]...)
	}
	movesOrder := strings.Join(order, " ")

	if len(order) == 1 {
		winnerID, err := strconv.ParseInt(order[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parse move order: %w", err)
		}
		return e.finish(ctx, winnerID, movesOrder)
	}

	now := time.Now()
	patch := repository.GamePatch{
		CurrentMove:    &nextID,
		LastWord:       &lastWord,
		MovesOrder:     &movesOrder,
		EventTimestamp: &now,
	}
	if err := e.stores.Games.Patch(ctx, e.game.ID, patch); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	if err := e.reload(ctx); err != nil {
		return err
	}

	e.send(ctx, messages.PlayerMove(nextName, lastWord, e.game.Setting.Timeout))
	e.armTimer(e.remaining())
	return nil
}

// finish ends the game and crowns the last player standing.
func (e *Engine) finish(ctx context.Context, winnerID int64, movesOrder string) error {
	now := time.Now()
	status := model.StatusFinished
	patch := repository.GamePatch{
		Status:         &status,
		MovesOrder:     &movesOrder,
		EventTimestamp: &now,
	}
	if err := e.stores.Games.Patch(ctx, e.game.ID, patch); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}

	if winner := e.game.PlayerByUserID(winnerID); winner != nil {
		winnerStatus := model.PlayerWinner
		if err := e.stores.Players.Patch(ctx, winner.ID, repository.PlayerPatch{Status: &winnerStatus}); err != nil {
			return fmt.Errorf("mark winner: %w", err)
		}
	}
	if err := e.reload(ctx); err != nil {
		return err
	}

	metrics.GamesFinished.Inc()
	e.finished.Store(true)
	e.send(ctx, messages.GameFinished(e.game.PlayerName(winnerID)))
	return nil
}

// sendStatus renders the scoreboard. An idle room shows the previous
// game's final score when there is one.
func (e *Engine) sendStatus(ctx context.Context) error {
	game := e.game
	if game.Status == model.StatusInit {
		prev, err := e.stores.Games.LastFinishedByPeer(ctx, e.peerID)
		if err != nil {
			return fmt.Errorf("load previous game: %w", err)
		}
		if prev != nil {
			game = prev
		}
	}

	players, err := e.stores.Players.ListByGame(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	rows := make([]messages.ScoreRow, 0, len(players))
	for i, p := range players {
		rows = append(rows, messages.ScoreRow{Rank: i + 1, Name: p.Name, Score: p.Score})
	}
	e.send(ctx, messages.Status(game.Status, rows))
	return nil
}

// reload refreshes the worker's game snapshot from the store.
func (e *Engine) reload(ctx context.Context) error {
	game, err := e.stores.Games.GetByID(ctx, e.game.ID)
	if err != nil {
		return fmt.Errorf("reload game %d: %w", e.game.ID, err)
	}
	if game == nil {
		e.finished.Store(true)
		return fmt.Errorf("game %d disappeared", e.game.ID)
	}
	e.game = game
	if game.Status == model.StatusFinished {
		e.finished.Store(true)
	}
	return nil
}

// send posts text into the room chat and mirrors it to admin clients.
// Delivery failures are logged; the game moves on regardless.
func (e *Engine) send(ctx context.Context, text string) {
	if err := e.gateway.SendMessage(ctx, e.peerID, text); err != nil {
		e.log.Error().Err(err).Msg("Failed to send chat message")
	}
	e.broadcast.BroadcastRoomEvent(e.peerID, "message", map[string]string{"text": text})
}

// memberName resolves a user's display name from the chat, falling
// back to a synthetic id name when the gateway cannot see them.
func (e *Engine) memberName(ctx context.Context, userID int64) string {
	members, err := e.gateway.GetConversationMembers(ctx, e.peerID)
	if err != nil {
		e.log.Warn().Err(err).Msg("Failed to resolve chat members")
	}
	for _, m := range members {
		if m.UserID == userID {
			return m.Name
		}
	}
	return model.SyntheticName(userID)
}

// dictionary returns the word source for the game's setting.
func (e *Engine) dictionary() Dictionary {
	return DictionaryFor(e.game.Setting.Title, e.stores.Words, e.stores.Cities)
}

// remaining is the current window in timeout units, net of time burned
// before a restart.
func (e *Engine) remaining() int64 {
	return e.game.Setting.Timeout - e.game.ElapsedTime
}

// armTimer schedules the room's next deadline. The stored elapsed time
// at arming, nonzero only when resuming an interrupted window, counts
// toward whatever a later shutdown persists, so repeated restarts keep
// measuring from the original event timestamp.
func (e *Engine) armTimer(units int64) {
	e.timerSeq++
	gameID := e.game.ID
	base := e.game.ElapsedTime
	e.timer = newTurnTimer(e.timerSeq, time.Duration(units)*TimerUnit, e.mbox, func(elapsed int64) {
		e.persistElapsed(gameID, base+elapsed)
	})
}

// cancelTimer stops the outstanding timer, if any, without persisting
// elapsed time.
func (e *Engine) cancelTimer() {
	if e.timer != nil {
		e.timer.Cancel(CancelNormal)
		e.timer = nil
	}
}

// persistElapsed stores the burned part of an interrupted window. Runs
// on the timer goroutine during shutdown, after the process context is
// already cancelled, hence the fresh context.
func (e *Engine) persistElapsed(gameID, elapsed int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.stores.Games.Patch(ctx, gameID, repository.GamePatch{ElapsedTime: &elapsed}); err != nil {
		e.log.Error().Err(err).Int64("elapsed", elapsed).Msg("Failed to persist elapsed time")
	}
}

// chainsFrom reports whether word starts with the effective tail letter
// of lastWord. The soft sign, hard sign and ы never open a word, so a
// tail landing on one steps back a letter.
func chainsFrom(lastWord, word string) bool {
	last := []rune(lastWord)
	if len(last) == 0 {
		return false
	}
	letter := last[len(last)-1]
	if (letter == 'ь' || letter == 'ъ' || letter == 'ы') && len(last) > 1 {
		letter = last[len(last)-2]
	}
	first, _ := utf8.DecodeRuneInString(word)
	return first == letter
}

func indexOf(list []string, target string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
