package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dinehub/admin-console/internal/auth"
	"github.com/dinehub/admin-console/internal/middleware"
	"github.com/dinehub/admin-console/internal/session"
)

const testSecret = "test-secret"

func newSession(t *testing.T, role string) (*session.MemoryStore, session.Session, string) {
	t.Helper()
	store := session.NewMemoryStore()
	s := session.New(7, "ops@dinehub.test", role, "backend-token", time.Hour)
	store.Save(context.Background(), s)
	token, err := auth.GenerateToken(testSecret, s.ID, s.AdminID, role, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return store, s, token
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	store, s, token := newSession(t, "super_admin")

	handler := middleware.Authenticate(testSecret, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			t.Fatal("expected claims in context")
		}
		if claims.SessionID != s.ID {
			t.Errorf("session ID: got %v, want %v", claims.SessionID, s.ID)
		}
		sess, ok := middleware.SessionFromContext(r.Context())
		if !ok || sess.BackendToken != "backend-token" {
			t.Errorf("session: got %+v", sess)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	store, _, token := newSession(t, "operations")

	handler := middleware.Authenticate(testSecret, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret, session.NewMemoryStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := middleware.Authenticate(testSecret, session.NewMemoryStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_LoggedOutSession(t *testing.T) {
	store, s, token := newSession(t, "operations")
	store.Delete(context.Background(), s.ID)

	handler := middleware.Authenticate(testSecret, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	store, _, token := newSession(t, "operations")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// operations trying to reach a super-admin-only endpoint
	handler := middleware.Authenticate(testSecret, store)(middleware.RequireRole("super_admin")(inner))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
