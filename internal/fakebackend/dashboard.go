package fakebackend

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
)

func (s *Server) restaurantStats(w http.ResponseWriter, _ *http.Request) {
	s.db.mu.Lock()
	var st backend.RestaurantStats
	for _, rs := range s.db.restaurants {
		st.Total++
		switch rs.Status {
		case enum.RestaurantStatusPending.Wire():
			st.Pending++
		case enum.RestaurantStatusApproved.Wire():
			st.Approved++
		case enum.RestaurantStatusRejected.Wire():
			st.Rejected++
		}
	}
	s.db.mu.Unlock()
	writeData(w, st)
}

func (s *Server) customerStats(w http.ResponseWriter, _ *http.Request) {
	s.db.mu.Lock()
	var st backend.CustomerStats
	for _, c := range s.db.customers {
		st.Total++
		if c.IsActive {
			st.Active++
		} else {
			st.Inactive++
		}
	}
	s.db.mu.Unlock()
	writeData(w, st)
}

// orderStats counts revenue from paid orders that were not cancelled.
func (s *Server) orderStats(w http.ResponseWriter, _ *http.Request) {
	now := s.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	s.db.mu.Lock()
	st := backend.OrderStats{Revenue: decimal.Zero, TodayRevenue: decimal.Zero}
	for _, o := range s.db.orders {
		st.Total++
		isToday := !o.CreatedAt.Before(today)
		if isToday {
			st.Today++
		}
		switch o.Status {
		case enum.OrderStatusDelivered.Wire():
			st.Delivered++
		case enum.OrderStatusCancelled.Wire():
			st.Cancelled++
			continue
		}
		if o.PaymentStatus != enum.PaymentStatusPaid.Wire() {
			continue
		}
		st.Revenue = st.Revenue.Add(o.TotalAmount)
		if isToday {
			st.TodayRevenue = st.TodayRevenue.Add(o.TotalAmount)
		}
	}
	s.db.mu.Unlock()
	writeData(w, st)
}
