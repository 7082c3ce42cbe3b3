package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vkurushin/wordchain/internal/metrics"
	"github.com/vkurushin/wordchain/internal/model"
)

// Coordinator owns the peer_id to Engine mapping. It resumes rooms at
// boot, lazily creates games for rooms it has never seen, and stops
// every room at shutdown.
type Coordinator struct {
	stores         Stores
	gateway        Gateway
	broadcast      Broadcaster
	defaultSetting string

	mu      sync.Mutex
	rooms   map[int64]*Engine
	setting *model.Setting
}

// NewCoordinator creates a Coordinator. defaultSetting names the game
// mode used for rooms that have no game yet; it is resolved lazily on
// first use.
func NewCoordinator(stores Stores, gateway Gateway, broadcast Broadcaster, defaultSetting string) *Coordinator {
	return &Coordinator{
		stores:         stores,
		gateway:        gateway,
		broadcast:      broadcast,
		defaultSetting: defaultSetting,
		rooms:          make(map[int64]*Engine),
	}
}

// Boot loads every unfinished game and resumes its room: interrupted
// countdowns continue from where the previous process left them.
func (c *Coordinator) Boot(ctx context.Context) error {
	games, err := c.stores.Games.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range games {
		game := &games[i]
		eng := NewEngine(game, c.stores, c.gateway, c.broadcast)
		if err := eng.Recover(ctx); err != nil {
			log.Error().Err(err).Int64("peer_id", game.PeerID).Msg("Room recovery failed")
		}
		eng.Start()
		c.rooms[game.PeerID] = eng
	}
	metrics.ActiveRooms.Set(float64(len(c.rooms)))
	log.Info().Int("rooms", len(c.rooms)).Msg("Coordinator booted")
	return nil
}

// Dispatch routes one update to its room, creating a fresh game when
// the room has none or the previous game finished.
func (c *Coordinator) Dispatch(ctx context.Context, upd model.Update) error {
	eng, err := c.engineFor(ctx, upd.PeerID)
	if err != nil {
		return err
	}
	return eng.Dispatch(ctx, upd)
}

// Shutdown stops every room. Outstanding timers persist their elapsed
// time so the next boot can resume them.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	rooms := make([]*Engine, 0, len(c.rooms))
	for _, eng := range c.rooms {
		rooms = append(rooms, eng)
	}
	c.rooms = make(map[int64]*Engine)
	c.mu.Unlock()

	for _, eng := range rooms {
		eng.Shutdown()
	}
	metrics.ActiveRooms.Set(0)
	log.Info().Int("rooms", len(rooms)).Msg("Coordinator stopped")
}

// engineFor returns the live engine for a room, replacing finished
// ones with a fresh game.
func (c *Coordinator) engineFor(ctx context.Context, peerID int64) (*Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if eng, ok := c.rooms[peerID]; ok && !eng.Finished() {
		return eng, nil
	}
	old := c.rooms[peerID]

	setting, err := c.lazyDefaultSetting(ctx)
	if err != nil {
		return nil, err
	}
	game, err := c.stores.Games.Create(ctx, setting.ID, peerID)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	eng := NewEngine(game, c.stores, c.gateway, c.broadcast)
	eng.Start()
	c.rooms[peerID] = eng
	metrics.ActiveRooms.Set(float64(len(c.rooms)))

	if old != nil {
		old.Shutdown()
	}
	return eng, nil
}

// lazyDefaultSetting resolves the configured default game mode once
// and caches it. Callers hold c.mu.
func (c *Coordinator) lazyDefaultSetting(ctx context.Context) (*model.Setting, error) {
	if c.setting != nil {
		return c.setting, nil
	}
	setting, err := c.stores.Settings.GetByTitle(ctx, c.defaultSetting)
	if err != nil {
		return nil, fmt.Errorf("load default setting: %w", err)
	}
	if setting == nil {
		return nil, fmt.Errorf("default setting %q not seeded", c.defaultSetting)
	}
	c.setting = setting
	return setting, nil
}
