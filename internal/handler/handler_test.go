package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/auth"
	"github.com/dinehub/admin-console/internal/backend"
	"github.com/dinehub/admin-console/internal/fakebackend"
	"github.com/dinehub/admin-console/internal/handler"
	"github.com/dinehub/admin-console/internal/listing"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/middleware"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/validate"
	"github.com/dinehub/admin-console/internal/workspace"
)

const testSecret = "test-secret"

// env is a console wired to an in-memory platform backend.
type env struct {
	fb       *fakebackend.Server
	sessions *session.MemoryStore
	registry *workspace.Registry
	router   chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logger.Discard()

	fb := fakebackend.New(fakebackend.Options{Log: log})
	srv := httptest.NewServer(fb.Handler())
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	sessions := session.NewMemoryStore()
	v := validate.New()
	registry := workspace.NewRegistry(workspace.Options{
		Client:      client,
		Sessions:    sessions,
		Validator:   v,
		SearchDelay: 20 * time.Millisecond,
		Log:         log,
	})
	t.Cleanup(registry.CloseAll)

	authHandler := handler.NewAuthHandler(backend.New(client), sessions, registry, v, testSecret, time.Hour, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(testSecret, sessions))
			authHandler.RegisterProtectedRoutes(r)
			r.Route("/dashboard", handler.NewDashboardHandler(registry).RegisterRoutes)
			r.Route("/restaurants", handler.NewRestaurantHandler(registry, log).RegisterRoutes)
			r.Route("/customers", handler.NewCustomerHandler(registry, log).RegisterRoutes)
			r.Route("/orders", handler.NewOrderHandler(registry, log).RegisterRoutes)
			r.Route("/onboarding", handler.NewOnboardingHandler(registry).RegisterRoutes)
			r.Route("/menu/categories", handler.NewCategoryHandler(registry, v, log).RegisterRoutes)
			r.Route("/menu/subcategories", handler.NewSubcategoryHandler(registry, v, log).RegisterRoutes)
			r.Route("/menu/items", handler.NewItemHandler(registry, v, log).RegisterRoutes)
		})
	})

	return &env{fb: fb, sessions: sessions, registry: registry, router: r}
}

// --- Helpers ---

func doRequest(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// upload sends a multipart form. files maps a field name to a file name.
func upload(t *testing.T, router http.Handler, method, path, token string, fields, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		ct := mime.TypeByExtension(filepath.Ext(name))
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, name))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("file contents of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (e *env) login(t *testing.T) string {
	t.Helper()
	rr := doRequest(t, e.router, "POST", "/api/auth/login", "", map[string]string{
		"email":    fakebackend.SeedEmail,
		"password": fakebackend.SeedPassword,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](t, rr).Token
}

// backendToken returns the platform token held by the session behind a
// console token.
func (e *env) backendToken(t *testing.T, consoleToken string) string {
	t.Helper()
	claims, err := auth.ValidateToken(testSecret, consoleToken)
	require.NoError(t, err)
	sess, err := e.sessions.Get(context.Background(), claims.SessionID)
	require.NoError(t, err)
	return sess.BackendToken
}

type errorBody struct {
	Error        string               `json:"error"`
	Fields       map[string]string    `json:"fields"`
	Notification listing.Notification `json:"notification"`
}

type mutationBody[T any, F comparable] struct {
	Notification listing.Notification `json:"notification"`
	State        listing.State[T, F]  `json:"state"`
}

type restaurantState = listing.State[backend.Restaurant, backend.RestaurantFilter]
