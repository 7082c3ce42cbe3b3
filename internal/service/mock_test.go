package service

import (
	"context"
	"sort"
	"sync"

	"github.com/vkurushin/wordchain/internal/model"
	"github.com/vkurushin/wordchain/internal/repository"
)

// mockStores bundles the in-memory repository fakes under one roof so
// the game fake can resolve its setting and player joins.
type mockStores struct {
	games     *mockGameRepo
	players   *mockPlayerRepo
	words     *mockWordRepo
	cities    *mockCityRepo
	settings  *mockSettingRepo
	usedWords *mockUsedWordRepo
	votes     *mockVoteRepo
}

func newMockStores() *mockStores {
	ms := &mockStores{
		games:     &mockGameRepo{games: make(map[int64]*model.Game)},
		players:   &mockPlayerRepo{players: make(map[int64]*model.Player)},
		words:     &mockWordRepo{words: make(map[int64]*model.Word)},
		cities:    &mockCityRepo{cities: make(map[int64]*model.City)},
		settings:  &mockSettingRepo{settings: make(map[int64]*model.Setting)},
		usedWords: &mockUsedWordRepo{used: make(map[int64]*model.UsedWord)},
		votes:     &mockVoteRepo{votes: make(map[int64]*model.Vote)},
	}
	ms.games.players = ms.players
	ms.games.settings = ms.settings
	ms.games.usedWords = ms.usedWords
	return ms
}

func (ms *mockStores) stores() Stores {
	return Stores{
		Games:     ms.games,
		Players:   ms.players,
		Words:     ms.words,
		Cities:    ms.cities,
		Settings:  ms.settings,
		UsedWords: ms.usedWords,
		Votes:     ms.votes,
	}
}

type mockGameRepo struct {
	mu        sync.Mutex
	seq       int64
	games     map[int64]*model.Game
	players   *mockPlayerRepo
	settings  *mockSettingRepo
	usedWords *mockUsedWordRepo
}

func (m *mockGameRepo) Create(_ context.Context, settingID, peerID int64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	g := &model.Game{
		ID:        m.seq,
		PeerID:    peerID,
		SettingID: settingID,
		Status:    model.StatusInit,
	}
	m.games[g.ID] = g
	return m.loaded(g), nil
}

func (m *mockGameRepo) GetByID(_ context.Context, id int64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	return m.loaded(g), nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Game
	for _, g := range m.games {
		if g.Status != model.StatusFinished {
			result = append(result, *m.loaded(g))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockGameRepo) List(_ context.Context, peerID *int64, status *string) ([]model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Game
	for _, g := range m.games {
		if peerID != nil && g.PeerID != *peerID {
			continue
		}
		if status != nil && g.Status != *status {
			continue
		}
		result = append(result, *m.loaded(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockGameRepo) LastFinishedByPeer(_ context.Context, peerID int64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *model.Game
	for _, g := range m.games {
		if g.PeerID != peerID || g.Status != model.StatusFinished {
			continue
		}
		if last == nil || g.ID > last.ID {
			last = g
		}
	}
	if last == nil {
		return nil, nil
	}
	return m.loaded(last), nil
}

func (m *mockGameRepo) Patch(_ context.Context, id int64, p repository.GamePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.SettingID != nil {
		g.SettingID = *p.SettingID
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.MovesOrder != nil {
		v := *p.MovesOrder
		g.MovesOrder = &v
	}
	if p.CurrentMove != nil {
		v := *p.CurrentMove
		g.CurrentMove = &v
	}
	if p.LastWord != nil {
		v := *p.LastWord
		g.LastWord = &v
	}
	if p.VoteWord != nil {
		v := *p.VoteWord
		g.VoteWord = &v
	}
	if p.SetVoteWordNil {
		g.VoteWord = nil
	}
	if p.EventTimestamp != nil {
		v := *p.EventTimestamp
		g.EventTimestamp = &v
	}
	if p.ElapsedTime != nil {
		g.ElapsedTime = *p.ElapsedTime
	}
	return nil
}

func (m *mockGameRepo) Clear(_ context.Context, id int64) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.players.deleteByGame(id)
	m.usedWords.deleteByGame(id)
	g.Status = model.StatusInit
	g.MovesOrder = nil
	g.CurrentMove = nil
	g.LastWord = nil
	g.VoteWord = nil
	g.EventTimestamp = nil
	g.ElapsedTime = 0
	return m.loaded(g), nil
}

// loaded copies a game with its setting and players joined in, the way
// the SQL store eager-loads them. Callers hold m.mu.
func (m *mockGameRepo) loaded(g *model.Game) *model.Game {
	cp := *g
	if s, ok := m.settings.settings[g.SettingID]; ok {
		sc := *s
		cp.Setting = &sc
	}
	cp.Players = m.players.byGame(g.ID)
	return &cp
}

type mockPlayerRepo struct {
	mu      sync.Mutex
	seq     int64
	players map[int64]*model.Player
}

func (m *mockPlayerRepo) Create(_ context.Context, gameID, userID int64, name string) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.GameID == gameID && p.UserID == userID {
			return nil, repository.ErrUniqueViolation
		}
	}
	m.seq++
	p := &model.Player{
		ID:     m.seq,
		GameID: gameID,
		UserID: userID,
		Name:   name,
		Status: model.PlayerActive,
		Online: true,
	}
	m.players[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *mockPlayerRepo) Get(_ context.Context, id int64) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlayerRepo) ListByGame(_ context.Context, gameID int64) ([]model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byGame(gameID), nil
}

func (m *mockPlayerRepo) Scored(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Score++
	return nil
}

func (m *mockPlayerRepo) Patch(_ context.Context, id int64, patch repository.PlayerPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Online != nil {
		p.Online = *patch.Online
	}
	if patch.Score != nil {
		p.Score = *patch.Score
	}
	return nil
}

// byGame copies a game's players ordered the way the SQL store orders
// them: status descending, then score descending. Ties break on id so
// tests see a stable order. Callers hold m.mu, or the game repo's
// which is taken first on every join path.
func (m *mockPlayerRepo) byGame(gameID int64) []model.Player {
	var result []model.Player
	for _, p := range m.players {
		if p.GameID == gameID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Status != result[j].Status {
			return result[i].Status > result[j].Status
		}
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *mockPlayerRepo) deleteByGame(gameID int64) {
	for id, p := range m.players {
		if p.GameID == gameID {
			delete(m.players, id)
		}
	}
}

// find returns a copy of the stored row for a game's user, or nil.
func (m *mockPlayerRepo) find(gameID, userID int64) *model.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.GameID == gameID && p.UserID == userID {
			cp := *p
			return &cp
		}
	}
	return nil
}

type mockWordRepo struct {
	mu    sync.Mutex
	seq   int64
	words map[int64]*model.Word
}

func (m *mockWordRepo) Create(_ context.Context, title string, isCorrect bool) (*model.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.words {
		if w.Title == title {
			return nil, repository.ErrUniqueViolation
		}
	}
	m.seq++
	w := &model.Word{ID: m.seq, Title: title, IsCorrect: isCorrect}
	m.words[w.ID] = w
	cp := *w
	return &cp, nil
}

func (m *mockWordRepo) GetByTitle(_ context.Context, title string) (*model.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.words {
		if w.Title == title {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockWordRepo) GetByID(_ context.Context, id int64) (*model.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.words[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *mockWordRepo) List(_ context.Context, isCorrect *bool) ([]model.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Word
	for _, w := range m.words {
		if isCorrect != nil && w.IsCorrect != *isCorrect {
			continue
		}
		result = append(result, *w)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockWordRepo) Patch(_ context.Context, id int64, title *string, isCorrect *bool) (*model.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.words[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if title != nil {
		for _, other := range m.words {
			if other.ID != id && other.Title == *title {
				return nil, repository.ErrUniqueViolation
			}
		}
		w.Title = *title
	}
	if isCorrect != nil {
		w.IsCorrect = *isCorrect
	}
	cp := *w
	return &cp, nil
}

func (m *mockWordRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.words[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.words, id)
	return nil
}

type mockCityRepo struct {
	mu     sync.Mutex
	seq    int64
	cities map[int64]*model.City
}

func (m *mockCityRepo) add(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.cities[m.seq] = &model.City{ID: m.seq, Title: title}
}

func (m *mockCityRepo) GetByTitle(_ context.Context, title string) (*model.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cities {
		if c.Title == title {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockCityRepo) List(_ context.Context) ([]model.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.City
	for _, c := range m.cities {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type mockSettingRepo struct {
	mu       sync.Mutex
	seq      int64
	settings map[int64]*model.Setting
}

func (m *mockSettingRepo) add(title string, timeout int64) *model.Setting {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s := &model.Setting{ID: m.seq, Title: title, Timeout: timeout}
	m.settings[s.ID] = s
	cp := *s
	return &cp
}

func (m *mockSettingRepo) Create(_ context.Context, title string, timeout int64) (*model.Setting, error) {
	m.mu.Lock()
	for _, s := range m.settings {
		if s.Title == title {
			m.mu.Unlock()
			return nil, repository.ErrUniqueViolation
		}
	}
	m.mu.Unlock()
	return m.add(title, timeout), nil
}

func (m *mockSettingRepo) GetByTitle(_ context.Context, title string) (*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settings {
		if s.Title == title {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockSettingRepo) GetByID(_ context.Context, id int64) (*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockSettingRepo) List(_ context.Context) ([]model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Setting
	for _, s := range m.settings {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockSettingRepo) Patch(_ context.Context, id int64, title *string, timeout *int64) (*model.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if title != nil {
		s.Title = *title
	}
	if timeout != nil {
		s.Timeout = *timeout
	}
	cp := *s
	return &cp, nil
}

func (m *mockSettingRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.settings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.settings, id)
	return nil
}

type mockUsedWordRepo struct {
	mu   sync.Mutex
	seq  int64
	used map[int64]*model.UsedWord
}

func (m *mockUsedWordRepo) Create(_ context.Context, title string, gameID int64) (*model.UsedWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	u := &model.UsedWord{ID: m.seq, GameID: gameID, Title: title}
	m.used[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *mockUsedWordRepo) ListByGame(_ context.Context, gameID int64) ([]model.UsedWord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.UsedWord
	for _, u := range m.used {
		if u.GameID == gameID {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUsedWordRepo) deleteByGame(gameID int64) {
	for id, u := range m.used {
		if u.GameID == gameID {
			delete(m.used, id)
		}
	}
}

func (m *mockUsedWordRepo) count(gameID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.used {
		if u.GameID == gameID {
			n++
		}
	}
	return n
}

type mockVoteRepo struct {
	mu    sync.Mutex
	seq   int64
	votes map[int64]*model.Vote
}

func (m *mockVoteRepo) Create(_ context.Context, gameID, playerID int64, title string, isCorrect bool) (*model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.votes {
		if v.PlayerID == playerID && v.Title == title {
			return nil, repository.ErrUniqueViolation
		}
	}
	m.seq++
	v := &model.Vote{ID: m.seq, GameID: gameID, PlayerID: playerID, Title: title, IsCorrect: isCorrect}
	m.votes[v.ID] = v
	cp := *v
	return &cp, nil
}

func (m *mockVoteRepo) ListByGame(_ context.Context, gameID int64, title string) ([]model.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Vote
	for _, v := range m.votes {
		if v.GameID == gameID && v.Title == title {
			result = append(result, *v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// recordingGateway captures everything an engine sends to chat. Sends
// happen on room worker goroutines while tests read, hence the mutex.
type recordingGateway struct {
	mu      sync.Mutex
	sent    []sentMessage
	members map[int64][]model.ChatMember
	sendErr error
}

type sentMessage struct {
	peerID int64
	text   string
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{members: make(map[int64][]model.ChatMember)}
}

func (g *recordingGateway) setSendErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendErr = err
}

func (g *recordingGateway) SendMessage(_ context.Context, peerID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{peerID: peerID, text: text})
	return nil
}

func (g *recordingGateway) GetConversationMembers(_ context.Context, peerID int64) ([]model.ChatMember, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[peerID], nil
}

func (g *recordingGateway) texts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.sent))
	for i, s := range g.sent {
		out[i] = s.text
	}
	return out
}

func (g *recordingGateway) lastText() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		return ""
	}
	return g.sent[len(g.sent)-1].text
}

func (g *recordingGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

// recordingBroadcaster captures room events mirrored to admin clients.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []roomEvent
}

type roomEvent struct {
	peerID    int64
	eventType string
	data      any
}

func (b *recordingBroadcaster) BroadcastRoomEvent(peerID int64, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, roomEvent{peerID: peerID, eventType: eventType, data: data})
}

func (b *recordingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *recordingBroadcaster) last() roomEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return roomEvent{}
	}
	return b.events[len(b.events)-1]
}
