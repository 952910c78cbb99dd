package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/auth"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/middleware"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/validate"
)

// AuthBackend is the part of the backend reachable without a bearer token.
// Satisfied by *backend.API; narrow interface for testability.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (backend.Ack, error)
	ResetPassword(ctx context.Context, email, otp, password string) (backend.Ack, error)
}

// SessionStore is what the auth endpoints need from the session store.
// Satisfied by session.Store; narrow interface for testability.
type SessionStore interface {
	Save(ctx context.Context, s session.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthHandler handles sign-in, sign-out and the admin profile.
type AuthHandler struct {
	backend   AuthBackend
	sessions  SessionStore
	spaces    Workspaces
	v         *validator.Validate
	jwtSecret string
	ttl       time.Duration
	log       *logrus.Entry
}

// NewAuthHandler creates a new AuthHandler. Console tokens and sessions both
// live for ttl.
func NewAuthHandler(b AuthBackend, sessions SessionStore, spaces Workspaces, v *validator.Validate, jwtSecret string, ttl time.Duration, log logrus.FieldLogger) *AuthHandler {
	if v == nil {
		v = validate.New()
	}
	return &AuthHandler{
		backend:   b,
		sessions:  sessions,
		spaces:    spaces,
		v:         v,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		log:       logger.Module(log, "auth"),
	}
}

// RegisterRoutes registers the public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
}

// RegisterProtectedRoutes registers endpoints that need a signed-in admin.
// Expected behind middleware.Authenticate.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/me", h.Me)
	r.Put("/auth/me/avatar", h.UpdateAvatar)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,numeric,len=6"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     backend.Admin `json:"admin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Handlers ---

// Login signs in against the backend. The backend token stays in the
// session; the browser receives a console token naming the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(h.v, req); err != nil {
		writeValidation(w, err)
		return
	}

	res, err := h.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apiclient.StatusCode(err) == http.StatusUnauthorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": apiclient.Message(err, "invalid credentials")})
			return
		}
		writeBackendError(w, err, "Login failed")
		return
	}

	sess := session.New(res.Admin.ID, res.Admin.Email, res.Admin.Role, res.Token, h.ttl)
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.log.WithError(err).Error("save session")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, sess.ID, sess.AdminID, sess.Role, h.ttl)
	if err != nil {
		h.log.WithError(err).Error("sign console token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.log.WithFields(logrus.Fields{"admin_id": sess.AdminID, "session": sess.ID}).Info("admin signed in")
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: sess.ExpiresAt, Admin: res.Admin})
}

// Logout ends the session. The backend is told on a best-effort basis; the
// console session goes away regardless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if ws, err := h.spaces.Open(sess); err == nil {
		if _, err := ws.API.Logout(r.Context()); err != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
			h.log.WithError(err).WithField("session", sess.ID).Warn("backend logout failed")
		}
	}
	if err := h.sessions.Delete(r.Context(), sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		h.log.WithError(err).WithField("session", sess.ID).Error("delete session")
	}
	h.spaces.End(sess.ID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the signed-in admin's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	admin, err := ws.API.Me(r.Context())
	if err != nil {
		writeBackendError(w, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// UpdateAvatar uploads a new profile picture from the "avatar" form field.
func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	if !parseMultipart(w, r) {
		return
	}
	file, closeFile, err := formFile(r, backend.AvatarField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid avatar upload"})
		return
	}
	if file == nil {
		writeValidation(w, &validate.Error{Fields: map[string]string{backend.AvatarField: "is required"}})
		return
	}
	defer closeFile()

	ws, ok := workspaceFor(w, r, h.spaces)
	if !ok {
		return
	}
	ack, err := ws.API.UpdateAvatar(r.Context(), *file)
	if err != nil {
		writeBackendError(w, err, "Failed to update avatar")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: messageOr(ack.Message, "Avatar updated")})
}

// ForgotPassword asks the backend to mail a reset code.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(h.v, req); err != nil {
		writeValidation(w, err)
		return
	}
	ack, err := h.backend.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeBackendError(w, err, "Failed to send reset code")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: messageOr(ack.Message, "A reset code has been sent to your email")})
}

// ResetPassword sets a new password using the mailed code.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(h.v, req); err != nil {
		writeValidation(w, err)
		return
	}
	ack, err := h.backend.ResetPassword(r.Context(), req.Email, req.OTP, req.Password)
	if err != nil {
		writeBackendError(w, err, "Failed to reset password")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: messageOr(ack.Message, "Password reset successfully")})
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
