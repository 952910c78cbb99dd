package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/validate"
	"github.com/dinehub/admin-console/internal/workspace"
)

// ItemHandler handles the menu item screen and each item's variations,
// addons and modifiers.
type ItemHandler struct {
	spaces Workspaces
	v      *validator.Validate
	list   *screen[backend.MenuItem, backend.ItemFilter]
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(spaces Workspaces, v *validator.Validate, log logrus.FieldLogger) *ItemHandler {
	if v == nil {
		v = validate.New()
	}
	return &ItemHandler{
		spaces: spaces,
		v:      v,
		list: newScreen(spaces, log, workspace.ScreenItems,
			func(w *workspace.Workspace) *listing.Controller[backend.MenuItem, backend.ItemFilter] {
				return w.Items
			}),
	}
}

// RegisterRoutes registers menu item endpoints.
// Expected to be mounted at /api/menu/items.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/availability", h.SetAvailable)
	r.Post("/{id}/{kind}", h.AddExtra)
	r.Delete("/{id}/{kind}/{extraID}", h.DeleteExtra)
}

// --- Request / Response types ---

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

// --- Handlers ---

// Get returns an item with its variations, addons and modifiers.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	item, err := ws.API.GetItem(r.Context(), id)
	if err != nil {
		writeBackendError(w, err, "Failed to load menu item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create adds a menu item from a multipart form with an optional image.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update replaces a menu item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *ItemHandler) save(w http.ResponseWriter, r *http.Request, id int64) {
	if !parseMultipart(w, r) {
		return
	}
	f := newFormValues(r)
	in := backend.ItemInput{
		CategoryID:    f.id("category_id"),
		SubcategoryID: f.id("subcategory_id"),
		Name:          f.text("name"),
		Description:   f.text("description"),
		Price:         f.amount("price"),
		IsVeg:         f.flag("is_veg", false),
		IsAvailable:   f.flag("is_available", true),
	}
	image, closeImage, err := formFile(r, backend.ImageField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid image upload"})
		return
	}
	defer closeImage()

	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}

	m := listing.Mutation{
		Action:       "create",
		Precondition: f.check(h.v, in),
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.CreateItem(ctx, in, image)
		}),
		SuccessMessage: "Menu item created successfully",
		ErrorMessage:   "Failed to create menu item",
	}
	if id > 0 {
		m.Action = "update"
		m.Send = send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.UpdateItem(ctx, id, in, image)
		})
		m.SuccessMessage = "Menu item updated successfully"
		m.ErrorMessage = "Failed to update menu item"
	}
	dispatch(w, r, ws.Items, m)
}

// Delete removes a menu item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Items, listing.Mutation{
		Action: "delete",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.DeleteItem(ctx, id)
		}),
		SuccessMessage: "Menu item deleted successfully",
		ErrorMessage:   "Failed to delete menu item",
	})
}

// SetAvailable marks an item in or out of stock.
func (h *ItemHandler) SetAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	var req availabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsAvailable == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_available is required"})
		return
	}
	available := *req.IsAvailable
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Items, listing.Mutation{
		Action: "availability",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.SetItemAvailable(ctx, id, available)
		}),
		SuccessMessage: "Availability updated",
		ErrorMessage:   "Failed to update availability",
	})
}

// AddExtra attaches a variation, addon or modifier to an item.
func (h *ItemHandler) AddExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	kind, ok := parseExtraKind(w, r)
	if !ok {
		return
	}
	var in backend.ExtraInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Items, listing.Mutation{
		Action: "add-" + string(kind),
		Precondition: func() error {
			if in.Price.IsNegative() {
				return &validate.Error{Fields: map[string]string{"price": "must be at least 0"}}
			}
			return validate.Struct(h.v, in)
		},
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.AddItemExtra(ctx, id, kind, in)
		}),
		SuccessMessage: "Saved successfully",
		ErrorMessage:   "Failed to save " + string(kind),
	})
}

// DeleteExtra detaches a variation, addon or modifier.
func (h *ItemHandler) DeleteExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "item")
	if !ok {
		return
	}
	kind, ok := parseExtraKind(w, r)
	if !ok {
		return
	}
	extraID, ok := parseID(w, r, "extraID", string(kind))
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Items, listing.Mutation{
		Action: "delete-" + string(kind),
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.DeleteItemExtra(ctx, id, kind, extraID)
		}),
		SuccessMessage: "Deleted successfully",
		ErrorMessage:   "Failed to delete " + string(kind),
	})
}

func parseExtraKind(w http.ResponseWriter, r *http.Request) (backend.ExtraKind, bool) {
	kind, err := backend.ParseExtraKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return "", false
	}
	return kind, true
}
