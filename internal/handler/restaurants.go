package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/workspace"
)

// RejectionReasonMessage is shown when a rejection is submitted without a reason.
const RejectionReasonMessage = "Please provide a rejection reason."

// RestaurantHandler handles the restaurant approval screen.
type RestaurantHandler struct {
	spaces Workspaces
	list   *screen[backend.Restaurant, backend.RestaurantFilter]
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(spaces Workspaces, log logrus.FieldLogger) *RestaurantHandler {
	return &RestaurantHandler{
		spaces: spaces,
		list: newScreen(spaces, log, workspace.ScreenRestaurants,
			func(w *workspace.Workspace) *listing.Controller[backend.Restaurant, backend.RestaurantFilter] {
				return w.Restaurants
			}),
	}
}

// RegisterRoutes registers restaurant endpoints.
// Expected to be mounted at /api/restaurants.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
}

// --- Request / Response types ---

type rejectRequest struct {
	Reason string `json:"reason"`
}

type restaurantResponse struct {
	backend.Restaurant
	Actions []string `json:"actions"`
}

// --- Handlers ---

// Get returns one restaurant with the approval actions it still offers.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "restaurant")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	rest, err := ws.API.GetRestaurant(r.Context(), id)
	if err != nil {
		writeBackendError(w, err, "Failed to load restaurant")
		return
	}
	resp := restaurantResponse{Restaurant: rest, Actions: []string{}}
	for _, a := range rest.Actions() {
		resp.Actions = append(resp.Actions, a.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// Approve moves a pending restaurant to Approved.
func (h *RestaurantHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "restaurant")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	dispatch(w, r, ws.Restaurants, listing.Mutation{
		Action: "approve",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.ApproveRestaurant(ctx, id)
		}),
		SuccessMessage: "Restaurant approved successfully",
		ErrorMessage:   "Failed to approve restaurant",
	})
}

// Reject moves a pending restaurant to Rejected. A reason is required.
func (h *RestaurantHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "restaurant")
	if !ok {
		return
	}
	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	dispatch(w, r, ws.Restaurants, listing.Mutation{
		Action:       "reject",
		Precondition: listing.RequireText(req.Reason, RejectionReasonMessage),
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.RejectRestaurant(ctx, id, req.Reason)
		}),
		SuccessMessage: "Restaurant rejected",
		ErrorMessage:   "Failed to reject restaurant",
	})
}
