package backend

import (
	"context"
	"time"

	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
)

const customersPath = "/admin/customers"

type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	IsActive    bool      `json:"is_active"`
	TotalOrders int       `json:"total_orders"`
	CreatedAt   time.Time `json:"created_at"`
}

type CustomerFilter struct {
	Activity enum.Activity `json:"activity"`
}

func (a *API) ListCustomers(ctx context.Context, q listing.Query[CustomerFilter]) (listing.Page[Customer], error) {
	v := listParams("page", q)
	setIf(v, "is_active", q.Filter.Activity.Wire())
	return list[Customer](ctx, a.c, customersPath, v)
}

func (a *API) ActivateCustomer(ctx context.Context, id int64) (Ack, error) {
	var ack Ack
	err := a.c.Patch(ctx, entityPath(customersPath, id, "activate"), struct{}{}, &ack)
	return ack, err
}

func (a *API) DeactivateCustomer(ctx context.Context, id int64) (Ack, error) {
	var ack Ack
	err := a.c.Patch(ctx, entityPath(customersPath, id, "deactivate"), struct{}{}, &ack)
	return ack, err
}
