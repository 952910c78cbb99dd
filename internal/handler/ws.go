package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dinehub/admin-console/internal/ws"
)

// WSHandler upgrades browser connections to the session's event stream.
type WSHandler struct {
	hub    *ws.Hub
	spaces Workspaces
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, spaces Workspaces) *WSHandler {
	return &WSHandler{hub: hub, spaces: spaces}
}

// RegisterRoutes registers the WebSocket endpoint.
// Endpoint: WS /ws?token=JWT (behind middleware.Authenticate)
func (h *WSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.Serve)
}

// Serve opens the session's workspace so search messages have somewhere to
// go, then joins the session's room.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	space, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	ws.ServeWS(h.hub, space.Session.ID, w, r)
}
