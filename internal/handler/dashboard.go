package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/listing"
)

const (
	recentOrderCount = 5
	dashboardTimeout = 15 * time.Second
)

// DashboardHandler serves the landing page figures.
type DashboardHandler struct {
	spaces Workspaces
	group  singleflight.Group
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(spaces Workspaces) *DashboardHandler {
	return &DashboardHandler{spaces: spaces}
}

// RegisterRoutes registers dashboard endpoints.
// Expected to be mounted at /api/dashboard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
}

// --- Response types ---

type dashboardResponse struct {
	Restaurants       backend.RestaurantStats `json:"restaurants"`
	Customers         backend.CustomerStats   `json:"customers"`
	Orders            backend.OrderStats      `json:"orders"`
	AverageOrderValue decimal.Decimal         `json:"average_order_value"`
	RecentOrders      []backend.Order         `json:"recent_orders"`
}

// --- Handlers ---

// Summary fetches every figure concurrently. Requests from several tabs of
// the same session share one round of backend calls.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	space, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	api := space.API

	v, err, _ := h.group.Do(space.Session.ID.String(), func() (interface{}, error) {
		// Detached so one tab closing does not fail the others.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dashboardTimeout)
		defer cancel()
		return loadDashboard(ctx, api)
	})
	if err != nil {
		writeBackendError(w, err, "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func loadDashboard(ctx context.Context, api *backend.API) (dashboardResponse, error) {
	var resp dashboardResponse
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := api.RestaurantStats(ctx)
		resp.Restaurants = s
		return err
	})
	g.Go(func() error {
		s, err := api.CustomerStats(ctx)
		resp.Customers = s
		return err
	})
	g.Go(func() error {
		s, err := api.OrderStats(ctx)
		resp.Orders = s
		return err
	})
	g.Go(func() error {
		q := listing.NewQuery[backend.OrderFilter]()
		q.PageSize = recentOrderCount
		page, err := api.ListOrders(ctx, q)
		resp.RecentOrders = page.Items
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboardResponse{}, err
	}
	if resp.RecentOrders == nil {
		resp.RecentOrders = []backend.Order{}
	}
	resp.AverageOrderValue = averageOrderValue(resp.Orders)
	return resp, nil
}

// averageOrderValue spreads revenue over the orders that were not cancelled.
func averageOrderValue(s backend.OrderStats) decimal.Decimal {
	n := s.Total - s.Cancelled
	if n <= 0 {
		return decimal.Zero
	}
	return s.Revenue.Div(decimal.NewFromInt(int64(n))).Round(2)
}
