package service

// Broadcaster mirrors room activity to connected admin clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastRoomEvent(peerID int64, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastRoomEvent(int64, string, any) {}
