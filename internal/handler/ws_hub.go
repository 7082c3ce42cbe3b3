package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventMessage marks an outbound chat message mirrored to the feed.
const EventMessage = "message"

// RoomEvent is the envelope for all feed messages.
type RoomEvent struct {
	Event  string `json:"event"`
	PeerID int64  `json:"peer_id"`
	Data   any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action string `json:"action"` // "subscribe" or "unsubscribe"
	PeerID int64  `json:"peer_id"`
}

// WSConn wraps a WebSocket connection with its admin and subscriptions.
type WSConn struct {
	conn    *websocket.Conn
	adminID int64
	send    chan []byte
}

// Hub manages WebSocket connections and room-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	rooms       map[int64]map[*WSConn]bool // peerID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		rooms:       make(map[int64]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for peerID, conns := range h.rooms {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, peerID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a room channel.
func (h *Hub) Subscribe(c *WSConn, peerID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[peerID] == nil {
		h.rooms[peerID] = make(map[*WSConn]bool)
	}
	h.rooms[peerID][c] = true
}

// Unsubscribe removes a connection from a room channel.
func (h *Hub) Unsubscribe(c *WSConn, peerID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[peerID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.rooms, peerID)
		}
	}
}

// BroadcastToRoom sends an event to all connections subscribed to a room.
func (h *Hub) BroadcastToRoom(peerID int64, event RoomEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Int64("peerId", peerID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[peerID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Int64("adminId", c.adminID).Int64("peerId", peerID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// RoomSubscriberCount returns the number of connections subscribed to a room.
func (h *Hub) RoomSubscriberCount(peerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[peerID])
}
