// Package fakebackend is an in-memory restaurant platform API speaking the
// same wire contract as the real backend. It backs cmd/devbackend and the
// console's end-to-end tests.
package fakebackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/enum"
	"github.com/dinehub/admin-console/internal/logger"
)

const maxUpload = 10 << 20

// Options configures a Server.
type Options struct {
	// Latency delays every answer, to make races visible during development.
	Latency time.Duration

	// OmitTotals drops totalCount from list answers, as some backend versions do.
	OmitTotals bool

	Now func() time.Time
	Log logrus.FieldLogger
}

// Server is the fake platform backend.
type Server struct {
	opts Options
	log  *logrus.Entry
	db   *store

	failMu   sync.Mutex
	failNext *failure
}

type failure struct {
	status  int
	message string
}

// New creates a Server with seeded data.
func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{opts: opts, log: logger.Module(opts.Log, "fakebackend"), db: newStore()}
	s.db.seed(opts.Now())
	return s
}

// Handler serves the API with paths relative to the API root ("/admin/...").
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.delay)
	r.Use(s.injectFailure)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/forgot-password", s.forgotPassword)
		r.Post("/auth/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.logout)
			r.Get("/auth/me", s.me)
			r.Put("/auth/me/avatar", s.updateAvatar)

			r.Route("/restaurants", func(r chi.Router) {
				r.Get("/", s.listRestaurants)
				r.Post("/onboard", s.onboard)
				r.Get("/{id}", s.getRestaurant)
				r.Patch("/{id}/approve", s.approveRestaurant)
				r.Patch("/{id}/reject", s.rejectRestaurant)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", s.listCustomers)
				r.Patch("/{id}/activate", s.setCustomerActive(true))
				r.Patch("/{id}/deactivate", s.setCustomerActive(false))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.listOrders)
				r.Get("/{id}", s.getOrder)
				r.Patch("/{id}/status", s.updateOrderStatus)
			})

			r.Route("/menu", s.menuRoutes)

			r.Get("/dashboard/restaurants", s.restaurantStats)
			r.Get("/dashboard/customers", s.customerStats)
			r.Get("/dashboard/orders", s.orderStats)
		})
	})
	return r
}

// IssueToken signs the seeded admin in without a login request.
func (s *Server) IssueToken() string {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.issueLocked(s.db.admins[SeedEmail].ID)
}

// AddAdmin creates or replaces a super admin account.
func (s *Server) AddAdmin(email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("fakebackend: email and password are required")
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("fakebackend: hash password: %w", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	id := s.db.id()
	if existing, ok := s.db.admins[email]; ok {
		id = existing.ID
	}
	s.db.admins[email] = &adminRecord{
		Admin:          backend.Admin{ID: id, Name: name, Email: email, Role: enum.AdminRoleSuper},
		hashedPassword: hashed,
	}
	return nil
}

// Revoke invalidates a bearer token; the next request with it gets 401.
func (s *Server) Revoke(token string) {
	s.db.mu.Lock()
	delete(s.db.tokens, token)
	s.db.mu.Unlock()
}

// FailNext makes the next mutating request fail with status and message.
func (s *Server) FailNext(status int, message string) {
	s.failMu.Lock()
	s.failNext = &failure{status: status, message: message}
	s.failMu.Unlock()
}

// OTP returns the pending password reset code for email.
func (s *Server) OTP(email string) string {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.otps[strings.ToLower(email)]
}

func (s *Server) issueLocked(adminID int64) string {
	token := uuid.NewString()
	s.db.tokens[token] = adminID
	return token
}

// --- Middleware ---

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok {
			s.db.mu.Lock()
			_, ok = s.db.tokens[token]
			s.db.mu.Unlock()
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.failMu.Lock()
			f := s.failNext
			s.failNext = nil
			s.failMu.Unlock()
			if f != nil {
				writeError(w, f.status, f.message)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// --- Wire helpers ---

type ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type pageInfo struct {
	TotalCount *int `json:"totalCount,omitempty"`
	TotalPages int  `json:"totalPages"`
	PageNumber int  `json:"pageNumber"`
	PageSize   int  `json:"pageSize"`
}

type listResponse struct {
	Data       any      `json:"data"`
	Pagination pageInfo `json:"pagination"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ack{Status: "error", Message: message})
}

func writeAck(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, ack{Status: "success", Message: message})
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: v})
}

// writePage slices rows by the request's page parameters. pageKey is the
// page parameter the endpoint uses.
func writePage[T any](s *Server, w http.ResponseWriter, r *http.Request, pageKey string, rows []T) {
	page := queryInt(r, pageKey, 1)
	size := queryInt(r, "page_size", 10)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	total := len(rows)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, rows[start:end])

	info := pageInfo{
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
		PageNumber: page,
		PageSize:   size,
	}
	if !s.opts.OmitTotals {
		info.TotalCount = &total
	}
	writeJSON(w, http.StatusOK, listResponse{Data: out, Pagination: info})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

// queryBool returns nil when key is absent.
func queryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// matches reports whether any of fields contains search, case-insensitively.
func matches(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func find[T any](list []*T, id int64, idOf func(*T) int64) *T {
	for _, v := range list {
		if idOf(v) == id {
			return v
		}
	}
	return nil
}
