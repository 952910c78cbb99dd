package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, sessionID uuid.UUID) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func runHub(t *testing.T, handler MessageHandler) *Hub {
	t.Helper()
	hub := NewHub(handler, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

type recordingHandler struct {
	mu   sync.Mutex
	msgs []ClientMessage
	ids  []uuid.UUID
}

func (r *recordingHandler) HandleClientMessage(id uuid.UUID, msg ClientMessage) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func TestHubRegistration(t *testing.T) {
	hub := runHub(t, nil)

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if hub.Connected(sessionID) != 1 {
		t.Fatal("client not registered in session room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := runHub(t, nil)

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[sessionID] != nil {
		t.Fatal("session room not cleaned up after last client unregistered")
	}
}

func TestPushToSingleSession(t *testing.T) {
	hub := runHub(t, nil)

	session1 := uuid.New()
	session2 := uuid.New()

	client1 := mockClient(hub, session1)
	client2 := mockClient(hub, session2)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.Push(session1, EventToast, map[string]string{"level": "success", "message": "Restaurant approved"})

	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventToast {
			t.Errorf("expected type %q, got %q", EventToast, received.Type)
		}
		if string(received.Payload) != `{"level":"success","message":"Restaurant approved"}` {
			t.Errorf("payload: got %s", received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for a different session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToEveryTabOfSession(t *testing.T) {
	hub := runHub(t, nil)

	sessionID := uuid.New()
	clients := []*Client{mockClient(hub, sessionID), mockClient(hub, sessionID), mockClient(hub, sessionID)}
	for _, c := range clients {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToSession(sessionID, Event{Type: EventListUpdated, Payload: json.RawMessage(`{"screen":"orders"}`)})

	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventListUpdated {
				t.Errorf("client%d: got type %q", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestCloseSessionDisconnects(t *testing.T) {
	hub := runHub(t, nil)

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.CloseSession(sessionID)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected send channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client was not disconnected")
	}
	if hub.Connected(sessionID) != 0 {
		t.Error("room must be gone")
	}
}

func TestClientSearchMessageReachesHandler(t *testing.T) {
	h := &recordingHandler{}
	hub := runHub(t, h)
	sessionID := uuid.New()
	client := mockClient(hub, sessionID)

	client.handle([]byte(`{"type":"search","screen":"restaurants","value":"piz"}`))
	client.handle([]byte(`{"type":"ping"}`))
	client.handle([]byte(`not json`))
	client.handle([]byte(`{"type":"search","value":"no screen"}`))

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.msgs) != 1 {
		t.Fatalf("expected one dispatched message, got %d", len(h.msgs))
	}
	if h.ids[0] != sessionID || h.msgs[0].Screen != "restaurants" || h.msgs[0].Value != "piz" {
		t.Errorf("got %v %+v", h.ids[0], h.msgs[0])
	}
}

func TestBroadcastToUnknownSession(t *testing.T) {
	hub := runHub(t, nil)

	session1 := uuid.New()
	client1 := mockClient(hub, session1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToSession(uuid.New(), Event{Type: EventSessionExpired, Payload: json.RawMessage(`{}`)})

	select {
	case <-client1.send:
		t.Fatal("client should not receive message for a different session")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStoppedHubNeverBlocksSenders(t *testing.T) {
	hub := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	sessionID := uuid.New()
	client := mockClient(hub, sessionID)
	if !hub.join(client) {
		t.Fatal("running hub refused a client")
	}
	cancel()
	<-stopped

	if _, open := <-client.send; open {
		t.Fatal("send channel should be closed on shutdown")
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		hub.leave(client)
		if hub.join(mockClient(hub, sessionID)) {
			t.Error("stopped hub accepted a client")
		}
		// More than the broadcast buffer holds.
		for i := 0; i < 300; i++ {
			hub.Push(sessionID, EventToast, map[string]string{"message": "late"})
		}
		hub.CloseSession(sessionID)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("sends to a stopped hub blocked")
	}
}
