package backend

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/listing"
)

const ordersPath = "/admin/orders"

type Order struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerName   string          `json:"customer_name"`
	RestaurantName string          `json:"restaurant_name"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type OrderItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderFilter struct {
	Status        enum.OrderStatus   `json:"status"`
	PaymentStatus enum.PaymentStatus `json:"payment_status"`
}

func (a *API) ListOrders(ctx context.Context, q listing.Query[OrderFilter]) (listing.Page[Order], error) {
	v := listParams("page", q)
	setIf(v, "status", q.Filter.Status.Wire())
	setIf(v, "payment_status", q.Filter.PaymentStatus.Wire())
	return list[Order](ctx, a.c, ordersPath, v)
}

func (a *API) GetOrder(ctx context.Context, id int64) (Order, error) {
	return get[Order](ctx, a.c, entityPath(ordersPath, id), nil)
}

// UpdateOrderStatus moves an order to any status; the backend owns progression rules.
func (a *API) UpdateOrderStatus(ctx context.Context, id int64, status enum.OrderStatus) (Ack, error) {
	var ack Ack
	body := map[string]string{"status": status.Wire()}
	err := a.c.Patch(ctx, entityPath(ordersPath, id, "status"), body, &ack)
	return ack, err
}
