package fakebackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dinehub/admin-console/internal/backend"
)

func categoryID(c *backend.Category) int64       { return c.ID }
func subcategoryID(c *backend.Subcategory) int64 { return c.ID }
func itemID(i *backend.MenuItem) int64           { return i.ID }

func (s *Server) menuRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.listCategories)
		r.Post("/", s.saveCategory)
		r.Put("/{id}", s.saveCategory)
		r.Delete("/{id}", s.deleteCategory)
		r.Patch("/{id}/status", s.toggleCategory)
	})
	r.Route("/subcategories", func(r chi.Router) {
		r.Get("/", s.listSubcategories)
		r.Post("/", s.saveSubcategory)
		r.Put("/{id}", s.saveSubcategory)
		r.Delete("/{id}", s.deleteSubcategory)
		r.Patch("/{id}/status", s.toggleSubcategory)
	})
	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.listItems)
		r.Post("/", s.saveItem)
		r.Get("/{id}", s.getItem)
		r.Put("/{id}", s.saveItem)
		r.Delete("/{id}", s.deleteItem)
		r.Patch("/{id}/availability", s.toggleItem)
		r.Post("/{id}/{kind}", s.addExtra)
		r.Delete("/{id}/{kind}/{extraID}", s.deleteExtra)
	})
}

// --- Multipart form helpers ---

type menuForm struct {
	r     *http.Request
	image string
}

// parseMenuForm reads a multipart create/update request. The image, when
// present, is "stored" under /uploads.
func parseMenuForm(w http.ResponseWriter, r *http.Request) (*menuForm, bool) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}
	f := &menuForm{r: r}
	if _, hdr, err := r.FormFile(backend.ImageField); err == nil {
		f.image = "/uploads/" + hdr.Filename
	}
	if strings.TrimSpace(f.text("name")) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Name is required")
		return nil, false
	}
	return f, true
}

func (f *menuForm) text(key string) string { return strings.TrimSpace(f.r.FormValue(key)) }

func (f *menuForm) flag(key string) bool {
	v, _ := strconv.ParseBool(f.r.FormValue(key))
	return v
}

func (f *menuForm) id(key string) int64 {
	v, _ := strconv.ParseInt(f.r.FormValue(key), 10, 64)
	return v
}

// optionalID returns 0, true when the request creates instead of updates.
func optionalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if chi.URLParam(r, "id") == "" {
		return 0, true
	}
	return pathID(w, r, "id")
}

// --- Categories ---

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	active := queryBool(r, "is_active")
	search := r.URL.Query().Get("search")

	s.db.mu.Lock()
	rows := []backend.Category{}
	for _, c := range s.db.categories {
		if active != nil && c.IsActive != *active {
			continue
		}
		if matches(search, c.Name, c.Description) {
			rows = append(rows, *c)
		}
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page", rows)
}

func (s *Server) saveCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(w, r)
	if !ok {
		return
	}
	f, ok := parseMenuForm(w, r)
	if !ok {
		return
	}
	sortOrder, _ := strconv.Atoi(f.r.FormValue("sort_order"))

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c := &backend.Category{}
	if id > 0 {
		if c = find(s.db.categories, id, categoryID); c == nil {
			writeError(w, http.StatusNotFound, "Category not found")
			return
		}
	}
	for _, other := range s.db.categories {
		if other.ID != c.ID && strings.EqualFold(other.Name, f.text("name")) {
			writeError(w, http.StatusConflict, "A category with this name already exists")
			return
		}
	}
	c.Name = f.text("name")
	c.Description = f.text("description")
	c.SortOrder = sortOrder
	c.IsActive = f.flag("is_active")
	if f.image != "" {
		c.ImageURL = f.image
	}
	if id == 0 {
		c.ID = s.db.id()
		s.db.categories = append(s.db.categories, c)
		writeAck(w, "Category created successfully")
		return
	}
	for _, sc := range s.db.subcategories {
		if sc.CategoryID == c.ID {
			sc.CategoryName = c.Name
		}
	}
	writeAck(w, "Category updated successfully")
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if find(s.db.categories, id, categoryID) == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	for _, sc := range s.db.subcategories {
		if sc.CategoryID == id {
			writeError(w, http.StatusConflict, "Delete the category's subcategories first")
			return
		}
	}
	for _, it := range s.db.items {
		if it.CategoryID == id {
			writeError(w, http.StatusConflict, "Delete the category's items first")
			return
		}
	}
	s.db.categories = remove(s.db.categories, id, categoryID)
	writeAck(w, "Category deleted successfully")
}

func (s *Server) toggleCategory(w http.ResponseWriter, r *http.Request) {
	id, active, ok := flagRequest(w, r, "is_active")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c := find(s.db.categories, id, categoryID)
	if c == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	c.IsActive = active
	writeAck(w, "Category status updated")
}

// --- Subcategories ---

func (s *Server) listSubcategories(w http.ResponseWriter, r *http.Request) {
	active := queryBool(r, "is_active")
	category := int64(queryInt(r, "category_id", 0))
	search := r.URL.Query().Get("search")

	s.db.mu.Lock()
	rows := []backend.Subcategory{}
	for _, sc := range s.db.subcategories {
		if active != nil && sc.IsActive != *active {
			continue
		}
		if category > 0 && sc.CategoryID != category {
			continue
		}
		if matches(search, sc.Name, sc.CategoryName) {
			rows = append(rows, *sc)
		}
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page", rows)
}

func (s *Server) saveSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(w, r)
	if !ok {
		return
	}
	f, ok := parseMenuForm(w, r)
	if !ok {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	parent := find(s.db.categories, f.id("category_id"), categoryID)
	if parent == nil {
		writeError(w, http.StatusUnprocessableEntity, "Category does not exist")
		return
	}
	sc := &backend.Subcategory{}
	if id > 0 {
		if sc = find(s.db.subcategories, id, subcategoryID); sc == nil {
			writeError(w, http.StatusNotFound, "Subcategory not found")
			return
		}
	}
	sc.CategoryID = parent.ID
	sc.CategoryName = parent.Name
	sc.Name = f.text("name")
	sc.Description = f.text("description")
	sc.IsActive = f.flag("is_active")
	if f.image != "" {
		sc.ImageURL = f.image
	}
	if id == 0 {
		sc.ID = s.db.id()
		s.db.subcategories = append(s.db.subcategories, sc)
		writeAck(w, "Subcategory created successfully")
		return
	}
	writeAck(w, "Subcategory updated successfully")
}

func (s *Server) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if find(s.db.subcategories, id, subcategoryID) == nil {
		writeError(w, http.StatusNotFound, "Subcategory not found")
		return
	}
	for _, it := range s.db.items {
		if it.SubcategoryID == id {
			it.SubcategoryID = 0
		}
	}
	s.db.subcategories = remove(s.db.subcategories, id, subcategoryID)
	writeAck(w, "Subcategory deleted successfully")
}

func (s *Server) toggleSubcategory(w http.ResponseWriter, r *http.Request) {
	id, active, ok := flagRequest(w, r, "is_active")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc := find(s.db.subcategories, id, subcategoryID)
	if sc == nil {
		writeError(w, http.StatusNotFound, "Subcategory not found")
		return
	}
	sc.IsActive = active
	writeAck(w, "Subcategory status updated")
}

// --- Items ---

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	available := queryBool(r, "is_available")
	category := int64(queryInt(r, "category_id", 0))
	sub := int64(queryInt(r, "subcategory_id", 0))
	search := r.URL.Query().Get("search")

	s.db.mu.Lock()
	rows := []backend.MenuItem{}
	for _, it := range s.db.items {
		if available != nil && it.IsAvailable != *available {
			continue
		}
		if category > 0 && it.CategoryID != category {
			continue
		}
		if sub > 0 && it.SubcategoryID != sub {
			continue
		}
		if matches(search, it.Name, it.Description) {
			row := *it
			row.Variations, row.Addons, row.Modifiers = nil, nil, nil
			rows = append(rows, row)
		}
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page", rows)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	it := find(s.db.items, id, itemID)
	var out backend.MenuItem
	if it != nil {
		out = *it
		out.Variations = append([]backend.ItemExtra(nil), it.Variations...)
		out.Addons = append([]backend.ItemExtra(nil), it.Addons...)
		out.Modifiers = append([]backend.ItemExtra(nil), it.Modifiers...)
	}
	s.db.mu.Unlock()

	if it == nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	writeData(w, out)
}

func (s *Server) saveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := optionalID(w, r)
	if !ok {
		return
	}
	f, ok := parseMenuForm(w, r)
	if !ok {
		return
	}
	price, err := decimal.NewFromString(f.text("price"))
	if err != nil || !price.IsPositive() {
		writeError(w, http.StatusUnprocessableEntity, "Price must be greater than zero")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if find(s.db.categories, f.id("category_id"), categoryID) == nil {
		writeError(w, http.StatusUnprocessableEntity, "Category does not exist")
		return
	}
	subID := f.id("subcategory_id")
	if subID > 0 {
		sc := find(s.db.subcategories, subID, subcategoryID)
		if sc == nil || sc.CategoryID != f.id("category_id") {
			writeError(w, http.StatusUnprocessableEntity, "Subcategory does not belong to the category")
			return
		}
	}
	it := &backend.MenuItem{}
	if id > 0 {
		if it = find(s.db.items, id, itemID); it == nil {
			writeError(w, http.StatusNotFound, "Menu item not found")
			return
		}
	}
	it.CategoryID = f.id("category_id")
	it.SubcategoryID = subID
	it.Name = f.text("name")
	it.Description = f.text("description")
	it.Price = price
	it.IsVeg = f.flag("is_veg")
	it.IsAvailable = f.flag("is_available")
	if f.image != "" {
		it.ImageURL = f.image
	}
	if id == 0 {
		it.ID = s.db.id()
		s.db.items = append(s.db.items, it)
		writeAck(w, "Menu item created successfully")
		return
	}
	writeAck(w, "Menu item updated successfully")
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if find(s.db.items, id, itemID) == nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	s.db.items = remove(s.db.items, id, itemID)
	writeAck(w, "Menu item deleted successfully")
}

func (s *Server) toggleItem(w http.ResponseWriter, r *http.Request) {
	id, available, ok := flagRequest(w, r, "is_available")
	if !ok {
		return
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	it := find(s.db.items, id, itemID)
	if it == nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	it.IsAvailable = available
	writeAck(w, "Menu item availability updated")
}

// extras returns the slice of it selected by kind.
func extras(it *backend.MenuItem, kind backend.ExtraKind) *[]backend.ItemExtra {
	switch kind {
	case backend.Variations:
		return &it.Variations
	case backend.Addons:
		return &it.Addons
	}
	return &it.Modifiers
}

func (s *Server) addExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	kind, err := backend.ParseExtraKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	var in backend.ExtraInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || in.Price.IsNegative() {
		writeError(w, http.StatusUnprocessableEntity, "Name is required and price cannot be negative")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	it := find(s.db.items, id, itemID)
	if it == nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	list := extras(it, kind)
	*list = append(*list, backend.ItemExtra{ID: s.db.id(), Name: strings.TrimSpace(in.Name), Price: in.Price, IsRequired: in.IsRequired})
	writeAck(w, "Added to "+string(kind))
}

func (s *Server) deleteExtra(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	extraID, ok := pathID(w, r, "extraID")
	if !ok {
		return
	}
	kind, err := backend.ParseExtraKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	it := find(s.db.items, id, itemID)
	if it == nil {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	list := extras(it, kind)
	for i, e := range *list {
		if e.ID == extraID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			writeAck(w, "Removed from "+string(kind))
			return
		}
	}
	writeError(w, http.StatusNotFound, "Not found")
}

// --- Shared ---

// flagRequest decodes a {key: bool} toggle body.
func flagRequest(w http.ResponseWriter, r *http.Request, key string) (int64, bool, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return 0, false, false
	}
	var body map[string]*bool
	if !decodeBody(w, r, &body) {
		return 0, false, false
	}
	v := body[key]
	if v == nil {
		writeError(w, http.StatusUnprocessableEntity, key+" is required")
		return 0, false, false
	}
	return id, *v, true
}

func remove[T any](list []*T, id int64, idOf func(*T) int64) []*T {
	out := list[:0]
	for _, v := range list {
		if idOf(v) != id {
			out = append(out, v)
		}
	}
	return out
}
