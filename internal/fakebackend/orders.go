package fakebackend

import (
	"net/http"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
)

func customerID(c *backend.Customer) int64 { return c.ID }
func orderID(o *backend.Order) int64       { return o.ID }

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	active := queryBool(r, "is_active")
	search := r.URL.Query().Get("search")

	s.db.mu.Lock()
	rows := []backend.Customer{}
	for _, c := range s.db.customers {
		if active != nil && c.IsActive != *active {
			continue
		}
		if !matches(search, c.Name, c.Email, c.Phone) {
			continue
		}
		rows = append(rows, *c)
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page", rows)
}

func (s *Server) setCustomerActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
		c := find(s.db.customers, id, customerID)
		if c == nil {
			writeError(w, http.StatusNotFound, "Customer not found")
			return
		}
		c.IsActive = active
		if active {
			writeAck(w, "Customer activated successfully")
			return
		}
		writeAck(w, "Customer deactivated successfully")
	}
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := enum.ParseOrderStatus(q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	payment, err := enum.ParsePaymentStatus(q.Get("payment_status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment status filter")
		return
	}
	search := q.Get("search")

	s.db.mu.Lock()
	rows := []backend.Order{}
	for _, o := range s.db.orders {
		if status != enum.OrderStatusAll && o.Status != status.Wire() {
			continue
		}
		if payment != enum.PaymentStatusAll && o.PaymentStatus != payment.Wire() {
			continue
		}
		if !matches(search, o.OrderNumber, o.CustomerName, o.RestaurantName) {
			continue
		}
		row := *o
		row.Items = nil
		rows = append(rows, row)
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page", rows)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	o := find(s.db.orders, id, orderID)
	var out backend.Order
	if o != nil {
		out = *o
		out.Items = append([]backend.OrderItem(nil), o.Items...)
	}
	s.db.mu.Unlock()

	if o == nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeData(w, out)
}

// updateOrderStatus accepts any status from any status.
func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := enum.ParseOrderStatus(req.Status)
	if err != nil || status == enum.OrderStatusAll {
		writeError(w, http.StatusUnprocessableEntity, "Invalid order status")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o := find(s.db.orders, id, orderID)
	if o == nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	o.Status = status.Wire()
	writeAck(w, "Order status updated to "+status.String())
}
