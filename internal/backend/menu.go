package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
)

const (
	categoriesPath    = "/admin/menu/categories"
	subcategoriesPath = "/admin/menu/subcategories"
	itemsPath         = "/admin/menu/items"
)

// ImageField is the multipart field carrying a menu image.
const ImageField = "image"

// --- Entities ---

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

type Subcategory struct {
	ID           int64  `json:"id"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	IsActive     bool   `json:"is_active"`
}

type MenuItem struct {
	ID            int64           `json:"id"`
	CategoryID    int64           `json:"category_id"`
	SubcategoryID int64           `json:"subcategory_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	Price         decimal.Decimal `json:"price"`
	IsVeg         bool            `json:"is_veg"`
	IsAvailable   bool            `json:"is_available"`
	Variations    []ItemExtra     `json:"variations,omitempty"`
	Addons        []ItemExtra     `json:"addons,omitempty"`
	Modifiers     []ItemExtra     `json:"modifiers,omitempty"`
}

// ItemExtra is a variation, addon or modifier attached to a menu item.
type ItemExtra struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	IsRequired bool            `json:"is_required,omitempty"`
}

// --- Filters ---

type CategoryFilter struct {
	Activity enum.Activity `json:"activity"`
}

type SubcategoryFilter struct {
	CategoryID int64         `json:"category_id"`
	Activity   enum.Activity `json:"activity"`
}

type ItemFilter struct {
	CategoryID    int64         `json:"category_id"`
	SubcategoryID int64         `json:"subcategory_id"`
	Availability  enum.Activity `json:"availability"`
}

// --- Inputs ---

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
	IsActive    bool   `json:"is_active"`
}

func (in CategoryInput) fields() map[string]string {
	return map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"sort_order":  strconv.Itoa(in.SortOrder),
		"is_active":   strconv.FormatBool(in.IsActive),
	}
}

type SubcategoryInput struct {
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsActive    bool   `json:"is_active"`
}

func (in SubcategoryInput) fields() map[string]string {
	return map[string]string{
		"category_id": strconv.FormatInt(in.CategoryID, 10),
		"name":        in.Name,
		"description": in.Description,
		"is_active":   strconv.FormatBool(in.IsActive),
	}
}

type ItemInput struct {
	CategoryID    int64           `json:"category_id" validate:"required,gt=0"`
	SubcategoryID int64           `json:"subcategory_id" validate:"gte=0"`
	Name          string          `json:"name" validate:"required,max=150"`
	Description   string          `json:"description" validate:"max=1000"`
	Price         decimal.Decimal `json:"price"`
	IsVeg         bool            `json:"is_veg"`
	IsAvailable   bool            `json:"is_available"`
}

func (in ItemInput) fields() map[string]string {
	f := map[string]string{
		"category_id":  strconv.FormatInt(in.CategoryID, 10),
		"name":         in.Name,
		"description":  in.Description,
		"price":        in.Price.StringFixed(2),
		"is_veg":       strconv.FormatBool(in.IsVeg),
		"is_available": strconv.FormatBool(in.IsAvailable),
	}
	if in.SubcategoryID > 0 {
		f["subcategory_id"] = strconv.FormatInt(in.SubcategoryID, 10)
	}
	return f
}

type ExtraInput struct {
	Name       string          `json:"name" validate:"required,max=100"`
	Price      decimal.Decimal `json:"price"`
	IsRequired bool            `json:"is_required"`
}

// ExtraKind selects the item sub-resource.
type ExtraKind string

const (
	Variations ExtraKind = "variations"
	Addons     ExtraKind = "addons"
	Modifiers  ExtraKind = "modifiers"
)

func ParseExtraKind(s string) (ExtraKind, error) {
	switch k := ExtraKind(s); k {
	case Variations, Addons, Modifiers:
		return k, nil
	}
	return "", fmt.Errorf("unknown item extra %q", s)
}

// --- Lists ---

func (a *API) ListCategories(ctx context.Context, q listing.Query[CategoryFilter]) (listing.Page[Category], error) {
	v := listParams("page", q)
	setIf(v, "is_active", q.Filter.Activity.Wire())
	return list[Category](ctx, a.c, categoriesPath, v)
}

func (a *API) ListSubcategories(ctx context.Context, q listing.Query[SubcategoryFilter]) (listing.Page[Subcategory], error) {
	v := listParams("page", q)
	setID(v, "category_id", q.Filter.CategoryID)
	setIf(v, "is_active", q.Filter.Activity.Wire())
	return list[Subcategory](ctx, a.c, subcategoriesPath, v)
}

func (a *API) ListItems(ctx context.Context, q listing.Query[ItemFilter]) (listing.Page[MenuItem], error) {
	v := listParams("page", q)
	setID(v, "category_id", q.Filter.CategoryID)
	setID(v, "subcategory_id", q.Filter.SubcategoryID)
	setIf(v, "is_available", q.Filter.Availability.Wire())
	return list[MenuItem](ctx, a.c, itemsPath, v)
}

// GetItem returns an item with its variations, addons and modifiers.
func (a *API) GetItem(ctx context.Context, id int64) (MenuItem, error) {
	return get[MenuItem](ctx, a.c, entityPath(itemsPath, id), nil)
}

// --- Mutations ---

func (a *API) CreateCategory(ctx context.Context, in CategoryInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPost, categoriesPath, in.fields(), image)
}

func (a *API) UpdateCategory(ctx context.Context, id int64, in CategoryInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPut, entityPath(categoriesPath, id), in.fields(), image)
}

func (a *API) DeleteCategory(ctx context.Context, id int64) (Ack, error) {
	return a.deleteAck(ctx, entityPath(categoriesPath, id))
}

func (a *API) SetCategoryActive(ctx context.Context, id int64, active bool) (Ack, error) {
	return a.setFlag(ctx, entityPath(categoriesPath, id, "status"), "is_active", active)
}

func (a *API) CreateSubcategory(ctx context.Context, in SubcategoryInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPost, subcategoriesPath, in.fields(), image)
}

func (a *API) UpdateSubcategory(ctx context.Context, id int64, in SubcategoryInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPut, entityPath(subcategoriesPath, id), in.fields(), image)
}

func (a *API) DeleteSubcategory(ctx context.Context, id int64) (Ack, error) {
	return a.deleteAck(ctx, entityPath(subcategoriesPath, id))
}

func (a *API) SetSubcategoryActive(ctx context.Context, id int64, active bool) (Ack, error) {
	return a.setFlag(ctx, entityPath(subcategoriesPath, id, "status"), "is_active", active)
}

func (a *API) CreateItem(ctx context.Context, in ItemInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPost, itemsPath, in.fields(), image)
}

func (a *API) UpdateItem(ctx context.Context, id int64, in ItemInput, image *apiclient.File) (Ack, error) {
	return a.sendMenu(ctx, http.MethodPut, entityPath(itemsPath, id), in.fields(), image)
}

func (a *API) DeleteItem(ctx context.Context, id int64) (Ack, error) {
	return a.deleteAck(ctx, entityPath(itemsPath, id))
}

func (a *API) SetItemAvailable(ctx context.Context, id int64, available bool) (Ack, error) {
	return a.setFlag(ctx, entityPath(itemsPath, id, "availability"), "is_available", available)
}

func (a *API) AddItemExtra(ctx context.Context, itemID int64, kind ExtraKind, in ExtraInput) (Ack, error) {
	var ack Ack
	err := a.c.Post(ctx, entityPath(itemsPath, itemID, string(kind)), in, &ack)
	return ack, err
}

func (a *API) DeleteItemExtra(ctx context.Context, itemID int64, kind ExtraKind, extraID int64) (Ack, error) {
	return a.deleteAck(ctx, entityPath(itemsPath, itemID, string(kind), strconv.FormatInt(extraID, 10)))
}

func (a *API) sendMenu(ctx context.Context, method, path string, fields map[string]string, image *apiclient.File) (Ack, error) {
	form := apiclient.Form{Fields: fields}
	if image != nil {
		img := *image
		img.Field = ImageField
		form.Files = append(form.Files, img)
	}
	var ack Ack
	err := a.c.Multipart(ctx, method, path, form, &ack)
	return ack, err
}

func (a *API) deleteAck(ctx context.Context, path string) (Ack, error) {
	var ack Ack
	err := a.c.Delete(ctx, path, &ack)
	return ack, err
}

func (a *API) setFlag(ctx context.Context, path, key string, v bool) (Ack, error) {
	var ack Ack
	err := a.c.Patch(ctx, path, map[string]bool{key: v}, &ack)
	return ack, err
}
