package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/workspace"
)

// OrderHandler handles the order screen.
type OrderHandler struct {
	spaces Workspaces
	list   *screen[backend.Order, backend.OrderFilter]
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(spaces Workspaces, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		spaces: spaces,
		list: newScreen(spaces, log, workspace.ScreenOrders,
			func(w *workspace.Workspace) *listing.Controller[backend.Order, backend.OrderFilter] {
				return w.Orders
			}),
	}
}

// RegisterRoutes registers order endpoints.
// Expected to be mounted at /api/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Get("/statuses", h.Statuses)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	backend.OrderItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type orderDetailResponse struct {
	backend.Order
	Items []orderItemResponse `json:"items"`
}

type statusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// --- Handlers ---

// Statuses lists every order status the dropdown offers. Any status can be
// chosen from any status.
func (h *OrderHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	opts := make([]statusOption, 0, len(enum.OrderStatuses()))
	for _, s := range enum.OrderStatuses() {
		opts = append(opts, statusOption{Value: s.Wire(), Label: s.String()})
	}
	writeJSON(w, http.StatusOK, opts)
}

// Get returns an order with its line items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	o, err := ws.API.GetOrder(r.Context(), id)
	if err != nil {
		writeBackendError(w, err, "Failed to load order")
		return
	}
	resp := orderDetailResponse{Order: o, Items: make([]orderItemResponse, len(o.Items))}
	for i, it := range o.Items {
		resp.Items[i] = orderItemResponse{OrderItem: it, Subtotal: it.Subtotal()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus sets an order's status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := enum.ParseOrderStatus(req.Status)
	if err != nil || status == enum.OrderStatusAll {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order status"})
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	dispatch(w, r, ws.Orders, listing.Mutation{
		Action: "status",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.UpdateOrderStatus(ctx, id, status)
		}),
		SuccessMessage: "Order status updated",
		ErrorMessage:   "Failed to update order status",
	})
}
