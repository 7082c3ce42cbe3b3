package handler

// BroadcastRoomEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastRoomEvent(peerID int64, eventType string, data any) {
	h.BroadcastToRoom(peerID, RoomEvent{
		Event:  eventType,
		PeerID: peerID,
		Data:   data,
	})
}
