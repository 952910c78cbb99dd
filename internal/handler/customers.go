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

// CustomerHandler handles the customer screen.
type CustomerHandler struct {
	spaces Workspaces
	list   *screen[backend.Customer, backend.CustomerFilter]
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(spaces Workspaces, log logrus.FieldLogger) *CustomerHandler {
	return &CustomerHandler{
		spaces: spaces,
		list: newScreen(spaces, log, workspace.ScreenCustomers,
			func(w *workspace.Workspace) *listing.Controller[backend.Customer, backend.CustomerFilter] {
				return w.Customers
			}),
	}
}

// RegisterRoutes registers customer endpoints.
// Expected to be mounted at /api/customers.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Post("/{id}/activate", h.setActive(true))
	r.Post("/{id}/deactivate", h.setActive(false))
}

func (h *CustomerHandler) setActive(active bool) http.HandlerFunc {
	action, verb := "deactivate", "deactivated"
	if active {
		action, verb = "activate", "activated"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "id", "customer")
		if !ok {
			return
		}
		ws, ok := workspaceFor(w, r, h.spaces)
		if !ok {
			return
		}

		dispatch(w, r, ws.Customers, listing.Mutation{
			Action: action,
			Send: send(func(ctx context.Context) (backend.Ack, error) {
				if active {
					return ws.API.ActivateCustomer(ctx, id)
				}
				return ws.API.DeactivateCustomer(ctx, id)
			}),
			SuccessMessage: "Customer " + verb + " successfully",
			ErrorMessage:   "Failed to " + action + " customer",
		})
	}
}
