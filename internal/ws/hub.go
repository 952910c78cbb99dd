package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/logger"
)

// Event types pushed to the browser.
const (
	EventListUpdated    = "list.updated"
	EventToast          = "toast"
	EventSessionExpired = "session.expired"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClientMessage is what the browser may send: search keystrokes for a screen.
type ClientMessage struct {
	Type   string `json:"type"`
	Screen string `json:"screen"`
	Value  string `json:"value"`
}

// MessageHandler receives client messages for a session.
type MessageHandler interface {
	HandleClientMessage(sessionID uuid.UUID, msg ClientMessage)
}

// sessionEvent is an internal struct for routing events to one session's room.
// A close request travels the same channel so it never overtakes an event.
type sessionEvent struct {
	SessionID uuid.UUID
	Event     Event
	Close     bool
}

// Hub maintains the set of active clients, one room per console session
type Hub struct {
	// Registered clients by session ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *sessionEvent

	// Closed when Run returns; sends give up instead of blocking.
	done     chan struct{}
	stopOnce sync.Once

	handler MessageHandler
	log     *logrus.Entry

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance. handler may be nil when clients never
// send anything.
func NewHub(handler MessageHandler, log logrus.FieldLogger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *sessionEvent, 256),
		done:       make(chan struct{}),
		handler:    handler,
		log:        logger.Module(log, "ws"),
	}
}

// SetHandler wires the client message handler after construction.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// Run starts the hub's main loop until ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id := range h.rooms {
				h.dropRoomLocked(id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.sessionID] == nil {
				h.rooms[client.sessionID] = make(map[*Client]bool)
			}
			h.rooms[client.sessionID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.sessionID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.sessionID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			if event.Close {
				h.dropRoomLocked(event.SessionID)
				h.mu.Unlock()
				continue
			}
			clients := h.rooms[event.SessionID]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				h.log.WithError(err).WithField("type", event.Event.Type).Error("marshal event")
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.SessionID], client)
					if len(h.rooms[event.SessionID]) == 0 {
						delete(h.rooms, event.SessionID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) dropRoomLocked(id uuid.UUID) {
	for client := range h.rooms[id] {
		close(client.send)
	}
	delete(h.rooms, id)
}

// join registers c. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) enqueue(ev *sessionEvent) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
		h.log.WithField("session_id", ev.SessionID).Debug("hub stopped, event dropped")
	}
}

// BroadcastToSession sends an event to every connection of one session.
// Events sent after the hub stopped are dropped.
func (h *Hub) BroadcastToSession(sessionID uuid.UUID, event Event) {
	h.enqueue(&sessionEvent{
		SessionID: sessionID,
		Event:     event,
	})
}

// Push marshals payload into an event of type typ for the session's room.
func (h *Hub) Push(sessionID uuid.UUID, typ string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("type", typ).Error("marshal payload")
		return
	}
	h.BroadcastToSession(sessionID, Event{Type: typ, Payload: raw})
}

// CloseSession disconnects every connection of a session, e.g. on logout.
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.enqueue(&sessionEvent{SessionID: sessionID, Close: true})
}

// Connected reports how many connections a session has open.
func (h *Hub) Connected(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) dispatch(sessionID uuid.UUID, msg ClientMessage) {
	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()
	if handler != nil {
		handler.HandleClientMessage(sessionID, msg)
	}
}
