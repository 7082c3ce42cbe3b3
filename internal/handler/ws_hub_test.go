package handler

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func newTestConn(adminID int64) *WSConn {
	return &WSConn{
		conn:    nil, // no real connection for hub tests
		adminID: adminID,
		send:    make(chan []byte, 256),
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newTestConn(1)

	hub.Register(c)
	if hub.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	hub.Unregister(c)
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	c := newTestConn(1)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.Subscribe(c, 2000000001)
	if hub.RoomSubscriberCount(2000000001) != 1 {
		t.Errorf("expected 1 subscriber, got %d", hub.RoomSubscriberCount(2000000001))
	}

	hub.Unsubscribe(c, 2000000001)
	if hub.RoomSubscriberCount(2000000001) != 0 {
		t.Errorf("expected 0 subscribers, got %d", hub.RoomSubscriberCount(2000000001))
	}
}

func TestHubBroadcastToRoom(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn(1)
	c2 := newTestConn(2)
	c3 := newTestConn(3) // not subscribed

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)
	defer hub.Unregister(c3)

	hub.Subscribe(c1, 2000000001)
	hub.Subscribe(c2, 2000000001)

	hub.BroadcastToRoom(2000000001, RoomEvent{
		Event:  EventMessage,
		PeerID: 2000000001,
		Data:   map[string]string{"text": "Слово принято!"},
	})

	// c1 and c2 should receive, c3 should not
	select {
	case msg := <-c1.send:
		var event RoomEvent
		json.Unmarshal(msg, &event)
		if event.Event != EventMessage {
			t.Errorf("expected message, got %s", event.Event)
		}
		if event.PeerID != 2000000001 {
			t.Errorf("expected peer 2000000001, got %d", event.PeerID)
		}
	case <-time.After(time.Second):
		t.Error("c1 did not receive broadcast")
	}

	select {
	case <-c2.send:
		// ok
	case <-time.After(time.Second):
		t.Error("c2 did not receive broadcast")
	}

	select {
	case <-c3.send:
		t.Error("c3 should not have received broadcast")
	default:
		// ok
	}
}

func TestHubBroadcastToOtherRoomNotDelivered(t *testing.T) {
	hub := NewHub()
	c := newTestConn(1)
	hub.Register(c)
	defer hub.Unregister(c)
	hub.Subscribe(c, 2000000001)

	hub.BroadcastToRoom(2000000002, RoomEvent{Event: EventMessage, PeerID: 2000000002})

	select {
	case <-c.send:
		t.Error("subscriber of another room should not have received broadcast")
	default:
		// ok
	}
}

func TestHubUnregisterCleansUpSubscriptions(t *testing.T) {
	hub := NewHub()
	c := newTestConn(1)
	hub.Register(c)
	hub.Subscribe(c, 2000000001)
	hub.Subscribe(c, 2000000002)

	hub.Unregister(c)

	if hub.RoomSubscriberCount(2000000001) != 0 {
		t.Errorf("expected 0 subscribers for room 1 after unregister")
	}
	if hub.RoomSubscriberCount(2000000002) != 0 {
		t.Errorf("expected 0 subscribers for room 2 after unregister")
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	// Concurrently register, subscribe, broadcast, unregister
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c := newTestConn(int64(id))
			hub.Register(c)
			hub.Subscribe(c, 2000000001)
			hub.BroadcastToRoom(2000000001, RoomEvent{Event: "test", PeerID: 2000000001})
			hub.Unsubscribe(c, 2000000001)
			hub.Unregister(c)
		}(i)
	}

	wg.Wait()
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections after concurrent test, got %d", hub.ConnectionCount())
	}
}

func TestHubBroadcastRoomEvent(t *testing.T) {
	hub := NewHub()
	c := newTestConn(1)
	hub.Register(c)
	defer hub.Unregister(c)
	hub.Subscribe(c, 2000000001)

	hub.BroadcastRoomEvent(2000000001, EventMessage, map[string]string{"text": "Игра начинается!"})

	select {
	case msg := <-c.send:
		var event RoomEvent
		json.Unmarshal(msg, &event)
		if event.Event != EventMessage {
			t.Errorf("expected message, got %s", event.Event)
		}
		if event.PeerID != 2000000001 {
			t.Errorf("expected peer 2000000001, got %d", event.PeerID)
		}
	case <-time.After(time.Second):
		t.Error("did not receive broadcast")
	}
}

func TestRoomEventSerialization(t *testing.T) {
	event := RoomEvent{
		Event:  EventMessage,
		PeerID: 2000000042,
		Data:   map[string]string{"text": "Ваше слово на букву \"с\""},
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["event"] != "message" {
		t.Errorf("expected event=message, got %v", raw["event"])
	}
	if int64(raw["peer_id"].(float64)) != 2000000042 {
		t.Errorf("expected peer_id=2000000042, got %v", raw["peer_id"])
	}
}

func TestClientMessageParsing(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"action":"subscribe","peer_id":2000000001}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Action != "subscribe" {
		t.Errorf("expected subscribe, got %s", msg.Action)
	}
	if msg.PeerID != 2000000001 {
		t.Errorf("expected peer 2000000001, got %d", msg.PeerID)
	}
}
