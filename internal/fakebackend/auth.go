package fakebackend

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/dinehub/admin-console/internal/backend"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.admins[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok || !a.checkPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := s.issueLocked(a.ID)
	s.log.WithField("admin", a.Email).Info("admin signed in")
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Login successful",
		Data:    backend.LoginResult{Token: token, Admin: a.Admin},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.Revoke(token)
	writeAck(w, "Logged out successfully")
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.admins[email]; !ok {
		writeError(w, http.StatusNotFound, "No admin account with this email")
		return
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not generate OTP")
		return
	}
	s.db.otps[email] = fmt.Sprintf("%06d", n.Int64())
	writeAck(w, "An OTP has been sent to your email")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	want, ok := s.db.otps[email]
	if !ok || want != req.OTP {
		writeError(w, http.StatusUnprocessableEntity, "Invalid or expired OTP")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusUnprocessableEntity, "Password must be at least 8 characters")
		return
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not reset password")
		return
	}
	s.db.admins[email].hashedPassword = hashed
	delete(s.db.otps, email)
	writeAck(w, "Password reset successfully")
}

// currentAdminLocked resolves the bearer token. authenticate already vetted it.
func (s *Server) currentAdminLocked(r *http.Request) *adminRecord {
	id := s.db.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	for _, a := range s.db.admins {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.db.mu.Lock()
	a := s.currentAdminLocked(r)
	var out backend.Admin
	if a != nil {
		out = a.Admin
	}
	s.db.mu.Unlock()

	if a == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeData(w, out)
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	_, hdr, err := r.FormFile(backend.AvatarField)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Avatar image is required")
		return
	}
	if !strings.HasPrefix(hdr.Header.Get("Content-Type"), "image/") {
		writeError(w, http.StatusUnprocessableEntity, "Avatar must be an image")
		return
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a := s.currentAdminLocked(r)
	if a == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	a.AvatarURL = "/uploads/avatars/" + hdr.Filename
	writeAck(w, "Profile picture updated")
}
