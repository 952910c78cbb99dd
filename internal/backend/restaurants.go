package backend

import (
	"context"
	"time"

	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
)

const restaurantsPath = "/admin/restaurants"

type Restaurant struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	OwnerName       string    `json:"owner_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	City            string    `json:"city"`
	Cuisine         string    `json:"cuisine"`
	Status          string    `json:"status"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Actions lists the approval transitions the console offers for r.
func (r Restaurant) Actions() []enum.RestaurantStatus {
	st, err := enum.ParseRestaurantStatus(r.Status)
	if err != nil {
		return nil
	}
	return st.Actions()
}

type RestaurantFilter struct {
	Status enum.RestaurantStatus `json:"status"`
}

// ListRestaurants pages through restaurants. This endpoint names its page
// parameter page_number.
func (a *API) ListRestaurants(ctx context.Context, q listing.Query[RestaurantFilter]) (listing.Page[Restaurant], error) {
	v := listParams("page_number", q)
	setIf(v, "status", q.Filter.Status.Wire())
	return list[Restaurant](ctx, a.c, restaurantsPath, v)
}

func (a *API) GetRestaurant(ctx context.Context, id int64) (Restaurant, error) {
	return get[Restaurant](ctx, a.c, entityPath(restaurantsPath, id), nil)
}

func (a *API) ApproveRestaurant(ctx context.Context, id int64) (Ack, error) {
	var ack Ack
	err := a.c.Patch(ctx, entityPath(restaurantsPath, id, "approve"), struct{}{}, &ack)
	return ack, err
}

func (a *API) RejectRestaurant(ctx context.Context, id int64, reason string) (Ack, error) {
	var ack Ack
	body := map[string]string{"rejection_reason": reason}
	err := a.c.Patch(ctx, entityPath(restaurantsPath, id, "reject"), body, &ack)
	return ack, err
}
