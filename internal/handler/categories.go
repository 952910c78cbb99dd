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

// CategoryHandler handles the menu category screen.
type CategoryHandler struct {
	spaces Workspaces
	v      *validator.Validate
	list   *screen[backend.Category, backend.CategoryFilter]
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(spaces Workspaces, v *validator.Validate, log logrus.FieldLogger) *CategoryHandler {
	if v == nil {
		v = validate.New()
	}
	return &CategoryHandler{
		spaces: spaces,
		v:      v,
		list: newScreen(spaces, log, workspace.ScreenCategories,
			func(w *workspace.Workspace) *listing.Controller[backend.Category, backend.CategoryFilter] {
				return w.Categories
			}),
	}
}

// RegisterRoutes registers category endpoints.
// Expected to be mounted at /api/menu/categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.SetActive)
}

// --- Request / Response types ---

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

// --- Handlers ---

// Create adds a category from a multipart form with an optional image.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update replaces a category. The image is kept unless a new one is sent.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *CategoryHandler) save(w http.ResponseWriter, r *http.Request, id int64) {
	if !parseMultipart(w, r) {
		return
	}
	f := newFormValues(r)
	in := backend.CategoryInput{
		Name:        f.text("name"),
		Description: f.text("description"),
		SortOrder:   f.integer("sort_order"),
		IsActive:    f.flag("is_active", true),
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
			return ws.API.CreateCategory(ctx, in, image)
		}),
		SuccessMessage: "Category created successfully",
		ErrorMessage:   "Failed to create category",
	}
	if id > 0 {
		m.Action = "update"
		m.Send = send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.UpdateCategory(ctx, id, in, image)
		})
		m.SuccessMessage = "Category updated successfully"
		m.ErrorMessage = "Failed to update category"
	}
	dispatch(w, r, ws.Categories, m)
}

// Delete removes a category. The backend refuses while subcategories or
// items still reference it.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Categories, listing.Mutation{
		Action: "delete",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.DeleteCategory(ctx, id)
		}),
		SuccessMessage: "Category deleted successfully",
		ErrorMessage:   "Failed to delete category",
	})
}

// SetActive shows or hides a category.
func (h *CategoryHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}
	active, ok := decodeActive(w, r)
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Categories, listing.Mutation{
		Action: "status",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.SetCategoryActive(ctx, id, active)
		}),
		SuccessMessage: "Category status updated",
		ErrorMessage:   "Failed to update category status",
	})
}

func decodeActive(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var req activeRequest
	if !decodeJSON(w, r, &req) {
		return false, false
	}
	if req.IsActive == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_active is required"})
		return false, false
	}
	return *req.IsActive, true
}

// SubcategoryHandler handles the menu subcategory screen.
type SubcategoryHandler struct {
	spaces Workspaces
	v      *validator.Validate
	list   *screen[backend.Subcategory, backend.SubcategoryFilter]
}

// NewSubcategoryHandler creates a new SubcategoryHandler.
func NewSubcategoryHandler(spaces Workspaces, v *validator.Validate, log logrus.FieldLogger) *SubcategoryHandler {
	if v == nil {
		v = validate.New()
	}
	return &SubcategoryHandler{
		spaces: spaces,
		v:      v,
		list: newScreen(spaces, log, workspace.ScreenSubcategories,
			func(w *workspace.Workspace) *listing.Controller[backend.Subcategory, backend.SubcategoryFilter] {
				return w.Subcategories
			}),
	}
}

// RegisterRoutes registers subcategory endpoints.
// Expected to be mounted at /api/menu/subcategories.
func (h *SubcategoryHandler) RegisterRoutes(r chi.Router) {
	h.list.register(r)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.SetActive)
}

// Create adds a subcategory under an existing category.
func (h *SubcategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update replaces a subcategory.
func (h *SubcategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "subcategory")
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *SubcategoryHandler) save(w http.ResponseWriter, r *http.Request, id int64) {
	if !parseMultipart(w, r) {
		return
	}
	f := newFormValues(r)
	in := backend.SubcategoryInput{
		CategoryID:  f.id("category_id"),
		Name:        f.text("name"),
		Description: f.text("description"),
		IsActive:    f.flag("is_active", true),
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
			return ws.API.CreateSubcategory(ctx, in, image)
		}),
		SuccessMessage: "Subcategory created successfully",
		ErrorMessage:   "Failed to create subcategory",
	}
	if id > 0 {
		m.Action = "update"
		m.Send = send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.UpdateSubcategory(ctx, id, in, image)
		})
		m.SuccessMessage = "Subcategory updated successfully"
		m.ErrorMessage = "Failed to update subcategory"
	}
	dispatch(w, r, ws.Subcategories, m)
}

// Delete removes a subcategory.
func (h *SubcategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "subcategory")
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Subcategories, listing.Mutation{
		Action: "delete",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.DeleteSubcategory(ctx, id)
		}),
		SuccessMessage: "Subcategory deleted successfully",
		ErrorMessage:   "Failed to delete subcategory",
	})
}

// SetActive shows or hides a subcategory.
func (h *SubcategoryHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "subcategory")
	if !ok {
		return
	}
	active, ok := decodeActive(w, r)
	if !ok {
		return
	}
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	dispatch(w, r, ws.Subcategories, listing.Mutation{
		Action: "status",
		Send: send(func(ctx context.Context) (backend.Ack, error) {
			return ws.API.SetSubcategoryActive(ctx, id, active)
		}),
		SuccessMessage: "Subcategory status updated",
		ErrorMessage:   "Failed to update subcategory status",
	})
}
