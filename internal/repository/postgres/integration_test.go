//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
	"github.com/vkurushin/wordchain/internal/testutil"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	m.Run()
}

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

// createTestSetting inserts a game mode and returns it.
func createTestSetting(t *testing.T, title string, timeout int64) *model.Setting {
	t.Helper()
	s, err := NewSettingRepo(testDB).Create(context.Background(), title, timeout)
	if err != nil {
		t.Fatalf("create test setting: %v", err)
	}
	return s
}

// createTestGame inserts a fresh game for a peer.
func createTestGame(t *testing.T, settingID, peerID int64) *model.Game {
	t.Helper()
	g, err := NewGameRepo(testDB).Create(context.Background(), settingID, peerID)
	if err != nil {
		t.Fatalf("create test game: %v", err)
	}
	return g
}

// --- WordRepo ---

func TestWordCreateAndGet(t *testing.T) {
	setup(t)
	repo := NewWordRepo(testDB)

	w, err := repo.Create(context.Background(), "олово", true)
	if err != nil {
		t.Fatalf("create word: %v", err)
	}
	if w.ID == 0 {
		t.Fatal("expected non-zero word ID")
	}

	found, err := repo.GetByTitle(context.Background(), "олово")
	if err != nil {
		t.Fatalf("get by title: %v", err)
	}
	if found == nil || found.ID != w.ID || !found.IsCorrect {
		t.Fatalf("unexpected word: %+v", found)
	}

	missing, err := repo.GetByTitle(context.Background(), "нетслова")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing word")
	}
}

func TestWordDuplicateTitle(t *testing.T) {
	setup(t)
	repo := NewWordRepo(testDB)

	if _, err := repo.Create(context.Background(), "агат", true); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := repo.Create(context.Background(), "агат", false)
	if !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}

func TestWordListFiltersByCorrectness(t *testing.T) {
	setup(t)
	repo := NewWordRepo(testDB)

	repo.Create(context.Background(), "омар", true)
	repo.Create(context.Background(), "репа", true)
	repo.Create(context.Background(), "хрень", false)

	correct := true
	words, err := repo.List(context.Background(), &correct)
	if err != nil {
		t.Fatalf("list correct: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 correct words, got %d", len(words))
	}

	all, _ := repo.List(context.Background(), nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 words total, got %d", len(all))
	}
}

func TestWordPatchAndDelete(t *testing.T) {
	setup(t)
	repo := NewWordRepo(testDB)

	w, _ := repo.Create(context.Background(), "омар", true)

	wrong := false
	patched, err := repo.Patch(context.Background(), w.ID, nil, &wrong)
	if err != nil {
		t.Fatalf("patch word: %v", err)
	}
	if patched.IsCorrect {
		t.Fatal("expected is_correct=false after patch")
	}

	if err := repo.Delete(context.Background(), w.ID); err != nil {
		t.Fatalf("delete word: %v", err)
	}
	if err := repo.Delete(context.Background(), w.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

// --- CityRepo ---

func TestCityGetByTitleIsCaseSensitive(t *testing.T) {
	setup(t)
	repo := NewCityRepo(testDB)

	if _, err := testDB.Exec(`INSERT INTO cities (title) VALUES ('Ленинград')`); err != nil {
		t.Fatalf("insert city: %v", err)
	}

	found, err := repo.GetByTitle(context.Background(), "Ленинград")
	if err != nil {
		t.Fatalf("get city: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find city by canonical title")
	}

	lower, err := repo.GetByTitle(context.Background(), "ленинград")
	if err != nil {
		t.Fatalf("get lowercase: %v", err)
	}
	if lower != nil {
		t.Fatal("lookup must match the canonical capitalized form only")
	}

	cities, _ := repo.List(context.Background())
	if len(cities) != 1 {
		t.Fatalf("expected 1 city, got %d", len(cities))
	}
}

// --- SettingRepo ---

func TestSettingCreateAndGetByTitle(t *testing.T) {
	setup(t)
	repo := NewSettingRepo(testDB)

	s, err := repo.Create(context.Background(), "слова", 30)
	if err != nil {
		t.Fatalf("create setting: %v", err)
	}

	found, err := repo.GetByTitle(context.Background(), "слова")
	if err != nil {
		t.Fatalf("get by title: %v", err)
	}
	if found == nil || found.ID != s.ID || found.Timeout != 30 {
		t.Fatalf("unexpected setting: %+v", found)
	}

	if _, err := repo.Create(context.Background(), "слова", 60); !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}

// --- GameRepo ---

func TestGameCreateStartsInInit(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)

	g := createTestGame(t, s.ID, 100)
	if g.Status != model.StatusInit {
		t.Fatalf("expected init status, got %s", g.Status)
	}
	if g.MovesOrder != nil || g.CurrentMove != nil || g.LastWord != nil || g.VoteWord != nil {
		t.Fatal("expected empty turn fields on a fresh game")
	}
	if g.Setting == nil || g.Setting.Title != "слова" {
		t.Fatalf("expected eager-loaded setting, got %+v", g.Setting)
	}
	if len(g.Players) != 0 {
		t.Fatalf("expected no players, got %d", len(g.Players))
	}
}

func TestGameGetByIDLoadsPlayers(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)

	players := NewPlayerRepo(testDB)
	players.Create(context.Background(), g.ID, 1, "Алиса")
	players.Create(context.Background(), g.ID, 2, "Борис")

	found, err := NewGameRepo(testDB).GetByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find game")
	}
	if len(found.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(found.Players))
	}

	missing, err := NewGameRepo(testDB).GetByID(context.Background(), 99999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing game")
	}
}

func TestGameListActiveExcludesFinished(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	repo := NewGameRepo(testDB)

	g1 := createTestGame(t, s.ID, 100)
	g2 := createTestGame(t, s.ID, 200)
	createTestGame(t, s.ID, 300)

	finished := model.StatusFinished
	if err := repo.Patch(context.Background(), g2.ID, repository.GamePatch{Status: &finished}); err != nil {
		t.Fatalf("finish g2: %v", err)
	}
	registration := model.StatusRegistration
	repo.Patch(context.Background(), g1.ID, repository.GamePatch{Status: &registration})

	active, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active games, got %d", len(active))
	}
	for _, g := range active {
		if g.Status == model.StatusFinished {
			t.Fatal("finished game leaked into active list")
		}
		if g.Setting == nil {
			t.Fatal("expected settings eager-loaded on active games")
		}
	}
}

func TestGameListFilters(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	repo := NewGameRepo(testDB)

	createTestGame(t, s.ID, 100)
	g2 := createTestGame(t, s.ID, 100)
	createTestGame(t, s.ID, 200)

	finished := model.StatusFinished
	repo.Patch(context.Background(), g2.ID, repository.GamePatch{Status: &finished})

	peer := int64(100)
	games, err := repo.List(context.Background(), &peer, nil)
	if err != nil {
		t.Fatalf("list by peer: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for peer 100, got %d", len(games))
	}

	games, _ = repo.List(context.Background(), &peer, &finished)
	if len(games) != 1 || games[0].ID != g2.ID {
		t.Fatalf("expected only g2 finished for peer 100, got %+v", games)
	}
}

func TestGamePatchPartialUpdate(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewGameRepo(testDB)

	status := model.StatusStarted
	order := "1 2"
	current := int64(1)
	word := "олово"
	now := time.Now()
	err := repo.Patch(context.Background(), g.ID, repository.GamePatch{
		Status:         &status,
		MovesOrder:     &order,
		CurrentMove:    &current,
		LastWord:       &word,
		EventTimestamp: &now,
	})
	if err != nil {
		t.Fatalf("patch game: %v", err)
	}

	found, _ := repo.GetByID(context.Background(), g.ID)
	if found.Status != model.StatusStarted {
		t.Fatalf("expected started, got %s", found.Status)
	}
	if found.MovesOrder == nil || *found.MovesOrder != "1 2" {
		t.Fatalf("unexpected moves_order: %v", found.MovesOrder)
	}
	if found.CurrentMove == nil || *found.CurrentMove != 1 {
		t.Fatalf("unexpected current_move: %v", found.CurrentMove)
	}
	if found.EventTimestamp == nil {
		t.Fatal("expected event_timestamp to be set")
	}

	// Untouched fields survive a later partial patch.
	elapsed := int64(7)
	repo.Patch(context.Background(), g.ID, repository.GamePatch{ElapsedTime: &elapsed})
	found, _ = repo.GetByID(context.Background(), g.ID)
	if found.LastWord == nil || *found.LastWord != "олово" {
		t.Fatal("partial patch clobbered last_word")
	}
	if found.ElapsedTime != 7 {
		t.Fatalf("expected elapsed_time=7, got %d", found.ElapsedTime)
	}
}

func TestGamePatchClearsVoteWord(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewGameRepo(testDB)

	vote := "корова"
	repo.Patch(context.Background(), g.ID, repository.GamePatch{VoteWord: &vote})

	if err := repo.Patch(context.Background(), g.ID, repository.GamePatch{SetVoteWordNil: true}); err != nil {
		t.Fatalf("clear vote word: %v", err)
	}
	found, _ := repo.GetByID(context.Background(), g.ID)
	if found.VoteWord != nil {
		t.Fatalf("expected NULL vote_word, got %v", *found.VoteWord)
	}
}

func TestGamePatchMissing(t *testing.T) {
	setup(t)
	status := model.StatusStarted
	err := NewGameRepo(testDB).Patch(context.Background(), 99999, repository.GamePatch{Status: &status})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGameClearResetsEverything(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewGameRepo(testDB)

	players := NewPlayerRepo(testDB)
	players.Create(context.Background(), g.ID, 1, "Алиса")
	players.Create(context.Background(), g.ID, 2, "Борис")
	NewUsedWordRepo(testDB).Create(context.Background(), "олово", g.ID)

	status := model.StatusRegistration
	now := time.Now()
	elapsed := int64(12)
	repo.Patch(context.Background(), g.ID, repository.GamePatch{
		Status: &status, EventTimestamp: &now, ElapsedTime: &elapsed,
	})

	cleared, err := repo.Clear(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("clear game: %v", err)
	}
	if cleared.Status != model.StatusInit {
		t.Fatalf("expected init after clear, got %s", cleared.Status)
	}
	if cleared.MovesOrder != nil || cleared.CurrentMove != nil || cleared.LastWord != nil ||
		cleared.VoteWord != nil || cleared.EventTimestamp != nil || cleared.ElapsedTime != 0 {
		t.Fatalf("expected initial field values after clear: %+v", cleared)
	}
	if len(cleared.Players) != 0 {
		t.Fatalf("expected no players after clear, got %d", len(cleared.Players))
	}

	used, _ := NewUsedWordRepo(testDB).ListByGame(context.Background(), g.ID)
	if len(used) != 0 {
		t.Fatalf("expected no used words after clear, got %d", len(used))
	}
}

func TestGameLastFinishedByPeer(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	repo := NewGameRepo(testDB)

	none, err := repo.LastFinishedByPeer(context.Background(), 100)
	if err != nil {
		t.Fatalf("last finished empty: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil when no finished games exist")
	}

	g1 := createTestGame(t, s.ID, 100)
	g2 := createTestGame(t, s.ID, 100)
	createTestGame(t, s.ID, 200)

	finished := model.StatusFinished
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	repo.Patch(context.Background(), g1.ID, repository.GamePatch{Status: &finished, EventTimestamp: &t1})
	repo.Patch(context.Background(), g2.ID, repository.GamePatch{Status: &finished, EventTimestamp: &t2})

	last, err := repo.LastFinishedByPeer(context.Background(), 100)
	if err != nil {
		t.Fatalf("last finished: %v", err)
	}
	if last == nil || last.ID != g2.ID {
		t.Fatalf("expected most recent finished game g2, got %+v", last)
	}
}

// --- PlayerRepo ---

func TestPlayerCreateDefaults(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewPlayerRepo(testDB)

	p, err := repo.Create(context.Background(), g.ID, 1, "Алиса")
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if p.Status != model.PlayerActive || !p.Online || p.Score != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestPlayerDuplicateRegistration(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewPlayerRepo(testDB)

	repo.Create(context.Background(), g.ID, 1, "Алиса")
	_, err := repo.Create(context.Background(), g.ID, 1, "Алиса")
	if !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	// Same user in a different game is fine.
	g2 := createTestGame(t, s.ID, 200)
	if _, err := repo.Create(context.Background(), g2.ID, 1, "Алиса"); err != nil {
		t.Fatalf("same user in another game: %v", err)
	}
}

func TestPlayerCreateMissingGame(t *testing.T) {
	setup(t)
	_, err := NewPlayerRepo(testDB).Create(context.Background(), 99999, 1, "Алиса")
	if !errors.Is(err, repository.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestPlayerScoredIncrements(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewPlayerRepo(testDB)

	p, _ := repo.Create(context.Background(), g.ID, 1, "Алиса")
	repo.Scored(context.Background(), p.ID)
	repo.Scored(context.Background(), p.ID)

	found, _ := repo.Get(context.Background(), p.ID)
	if found.Score != 2 {
		t.Fatalf("expected score 2, got %d", found.Score)
	}
}

func TestPlayerListByGameScoreboardOrder(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewPlayerRepo(testDB)

	p1, _ := repo.Create(context.Background(), g.ID, 1, "Алиса")
	p2, _ := repo.Create(context.Background(), g.ID, 2, "Борис")
	p3, _ := repo.Create(context.Background(), g.ID, 3, "Вера")

	// Вера wins with the lowest score; Winner still sorts first.
	repo.Scored(context.Background(), p1.ID)
	repo.Scored(context.Background(), p1.ID)
	repo.Scored(context.Background(), p2.ID)
	winner := model.PlayerWinner
	repo.Patch(context.Background(), p3.ID, repository.PlayerPatch{Status: &winner})

	players, err := repo.ListByGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list by game: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	if players[0].Name != "Вера" {
		t.Fatalf("expected Winner first, got %s", players[0].Name)
	}
	if players[1].Name != "Алиса" || players[2].Name != "Борис" {
		t.Fatalf("expected score-descending order, got %s then %s", players[1].Name, players[2].Name)
	}
}

// --- UsedWordRepo ---

func TestUsedWordCreateAndList(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	repo := NewUsedWordRepo(testDB)

	repo.Create(context.Background(), "олово", g.ID)
	repo.Create(context.Background(), "омар", g.ID)

	used, err := repo.ListByGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list used words: %v", err)
	}
	if len(used) != 2 {
		t.Fatalf("expected 2 used words, got %d", len(used))
	}

	other := createTestGame(t, s.ID, 200)
	otherUsed, _ := repo.ListByGame(context.Background(), other.ID)
	if len(otherUsed) != 0 {
		t.Fatal("used words leaked across games")
	}
}

// --- VoteRepo ---

func TestVoteCreateAndTallyList(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	players := NewPlayerRepo(testDB)
	p1, _ := players.Create(context.Background(), g.ID, 1, "Алиса")
	p2, _ := players.Create(context.Background(), g.ID, 2, "Борис")
	repo := NewVoteRepo(testDB)

	repo.Create(context.Background(), g.ID, p1.ID, "корова", true)
	repo.Create(context.Background(), g.ID, p2.ID, "корова", false)

	votes, err := repo.ListByGame(context.Background(), g.ID, "корова")
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(votes))
	}

	other, _ := repo.ListByGame(context.Background(), g.ID, "трава")
	if len(other) != 0 {
		t.Fatal("votes for another word leaked into the tally")
	}
}

func TestVoteDuplicatePerPlayerAndWord(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	p, _ := NewPlayerRepo(testDB).Create(context.Background(), g.ID, 1, "Алиса")
	repo := NewVoteRepo(testDB)

	repo.Create(context.Background(), g.ID, p.ID, "корова", true)
	_, err := repo.Create(context.Background(), g.ID, p.ID, "корова", false)
	if !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	// A different word by the same player is a fresh vote.
	if _, err := repo.Create(context.Background(), g.ID, p.ID, "трава", true); err != nil {
		t.Fatalf("vote for another word: %v", err)
	}
}

// --- Cascades ---

func TestDeletingGameCascades(t *testing.T) {
	setup(t)
	s := createTestSetting(t, "слова", 30)
	g := createTestGame(t, s.ID, 100)
	p, _ := NewPlayerRepo(testDB).Create(context.Background(), g.ID, 1, "Алиса")
	NewUsedWordRepo(testDB).Create(context.Background(), "олово", g.ID)
	NewVoteRepo(testDB).Create(context.Background(), g.ID, p.ID, "корова", true)

	if _, err := testDB.Exec(`DELETE FROM games WHERE id = $1`, g.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}

	var n int
	testDB.QueryRow(`SELECT count(*) FROM players WHERE game_id = $1`, g.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected cascaded player delete, %d left", n)
	}
	testDB.QueryRow(`SELECT count(*) FROM usedwords WHERE game_id = $1`, g.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected cascaded used-word delete, %d left", n)
	}
	testDB.QueryRow(`SELECT count(*) FROM votes WHERE game_id = $1`, g.ID).Scan(&n)
	if n != 0 {
		t.Fatalf("expected cascaded vote delete, %d left", n)
	}
}

// --- AdminRepo ---

func TestAdminCreateAndGetByEmail(t *testing.T) {
	setup(t)
	repo := NewAdminRepo(testDB)

	a, err := repo.Create(context.Background(), "admin@example.com", "$2a$10$hash")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	found, err := repo.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found == nil || found.ID != a.ID {
		t.Fatal("expected to find admin by email")
	}

	missing, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing admin")
	}

	if _, err := repo.Create(context.Background(), "admin@example.com", "x"); !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}
