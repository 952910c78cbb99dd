package backend

import (
	"context"

	"github.com/shopspring/decimal"
)

const dashboardPath = "/admin/dashboard"

type RestaurantStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type CustomerStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type OrderStats struct {
	Total        int             `json:"total"`
	Today        int             `json:"today"`
	Delivered    int             `json:"delivered"`
	Cancelled    int             `json:"cancelled"`
	Revenue      decimal.Decimal `json:"revenue"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
}

func (a *API) RestaurantStats(ctx context.Context) (RestaurantStats, error) {
	return get[RestaurantStats](ctx, a.c, dashboardPath+"/restaurants", nil)
}

func (a *API) CustomerStats(ctx context.Context) (CustomerStats, error) {
	return get[CustomerStats](ctx, a.c, dashboardPath+"/customers", nil)
}

func (a *API) OrderStats(ctx context.Context) (OrderStats, error) {
	return get[OrderStats](ctx, a.c, dashboardPath+"/orders", nil)
}
