package fakebackend

import (
	"net/http"
	"strings"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
)

func restaurantID(r *backend.Restaurant) int64 { return r.ID }

func (s *Server) listRestaurants(w http.ResponseWriter, r *http.Request) {
	status, err := enum.ParseRestaurantStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	search := r.URL.Query().Get("search")

	s.db.mu.Lock()
	rows := []backend.Restaurant{}
	for _, rs := range s.db.restaurants {
		if status != enum.RestaurantStatusAll && rs.Status != status.Wire() {
			continue
		}
		if !matches(search, rs.Name, rs.OwnerName, rs.Email, rs.City) {
			continue
		}
		rows = append(rows, *rs)
	}
	s.db.mu.Unlock()

	writePage(s, w, r, "page_number", rows)
}

func (s *Server) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s.db.mu.Lock()
	rs := find(s.db.restaurants, id, restaurantID)
	var out backend.Restaurant
	if rs != nil {
		out = *rs
	}
	s.db.mu.Unlock()

	if rs == nil {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	writeData(w, out)
}

func (s *Server) approveRestaurant(w http.ResponseWriter, r *http.Request) {
	s.decideRestaurant(w, r, enum.RestaurantStatusApproved, "")
}

func (s *Server) rejectRestaurant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RejectionReason) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Rejection reason is required")
		return
	}
	s.decideRestaurant(w, r, enum.RestaurantStatusRejected, req.RejectionReason)
}

// decideRestaurant moves a pending restaurant to a terminal status.
func (s *Server) decideRestaurant(w http.ResponseWriter, r *http.Request, to enum.RestaurantStatus, reason string) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rs := find(s.db.restaurants, id, restaurantID)
	if rs == nil {
		writeError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if rs.Status != enum.RestaurantStatusPending.Wire() {
		writeError(w, http.StatusConflict, "Restaurant is already "+strings.ToLower(rs.Status))
		return
	}
	rs.Status = to.Wire()
	if reason != "" {
		rs.RejectionReason = &reason
	}
	writeAck(w, "Restaurant "+strings.ToLower(to.Wire())+" successfully")
}

// onboard registers a new pending restaurant from a multipart submission.
func (s *Server) onboard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	name := strings.TrimSpace(r.FormValue("restaurant_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	if name == "" || email == "" {
		writeError(w, http.StatusUnprocessableEntity, "Restaurant name and email are required")
		return
	}
	if _, _, err := r.FormFile("fssai_document"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "FSSAI document is required")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, rs := range s.db.restaurants {
		if strings.EqualFold(rs.Email, email) {
			writeError(w, http.StatusConflict, "A restaurant with this email already exists")
			return
		}
	}
	s.db.restaurants = append([]*backend.Restaurant{{
		ID:        s.db.id(),
		Name:      name,
		OwnerName: r.FormValue("owner_name"),
		Email:     email,
		Phone:     r.FormValue("phone"),
		City:      r.FormValue("city"),
		Cuisine:   r.FormValue("cuisine"),
		Status:    enum.RestaurantStatusPending.Wire(),
		CreatedAt: s.opts.Now(),
	}}, s.db.restaurants...)
	s.log.WithField("restaurant", name).Info("restaurant onboarded")
	writeAck(w, "Restaurant submitted for approval")
}
