package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/secure"

	"github.com/dinehub/admin-console/internal/config"
	"github.com/dinehub/admin-console/internal/handler"
	"github.com/dinehub/admin-console/internal/logger"
	mw "github.com/dinehub/admin-console/internal/middleware"
	"github.com/dinehub/admin-console/internal/observability"
	"github.com/dinehub/admin-console/internal/session"
	"github.com/dinehub/admin-console/internal/ws"
)

// loginRateLimit caps sign-in attempts per client IP.
const loginRateLimit = 10

// Params are the dependencies the router wires into handlers.
type Params struct {
	Config    *config.Config
	Log       logrus.FieldLogger
	Sessions  session.Store
	Spaces    handler.Workspaces
	Auth      handler.AuthBackend
	Hub       *ws.Hub
	Validator *validator.Validate
	Metrics   *observability.Metrics
}

// New creates a Chi router with all console routes wired up.
func New(p Params) chi.Router {
	cfg := p.Config
	log := logger.Module(p.Log, "router")
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(cfg, log))
	r.Use(p.Metrics.Middleware)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

	authHandler := handler.NewAuthHandler(p.Auth, p.Sessions, p.Spaces, p.Validator, cfg.JWTSecret, cfg.SessionTTL, p.Log)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public, throttled)
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(loginRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			authHandler.RegisterRoutes(r)
		})

		// Protected routes (require a live session)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret, p.Sessions))

			authHandler.RegisterProtectedRoutes(r)

			r.Route("/dashboard", handler.NewDashboardHandler(p.Spaces).RegisterRoutes)
			r.Route("/restaurants", handler.NewRestaurantHandler(p.Spaces, p.Log).RegisterRoutes)
			r.Route("/customers", handler.NewCustomerHandler(p.Spaces, p.Log).RegisterRoutes)
			r.Route("/orders", handler.NewOrderHandler(p.Spaces, p.Log).RegisterRoutes)
			r.Route("/onboarding", handler.NewOnboardingHandler(p.Spaces).RegisterRoutes)

			r.Route("/menu", func(r chi.Router) {
				r.Route("/categories", handler.NewCategoryHandler(p.Spaces, p.Validator, p.Log).RegisterRoutes)
				r.Route("/subcategories", handler.NewSubcategoryHandler(p.Spaces, p.Validator, p.Log).RegisterRoutes)
				r.Route("/items", handler.NewItemHandler(p.Spaces, p.Validator, p.Log).RegisterRoutes)
			})
		})
	})

	// WebSocket route (token in the query string)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret, p.Sessions))
		handler.NewWSHandler(p.Hub, p.Spaces).RegisterRoutes(r)
	})

	log.Debug("router initialized with all handlers")
	return r
}

func securityHeaders(cfg *config.Config, log *logrus.Entry) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !cfg.IsProduction(),
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sec.Process(w, r); err != nil {
				log.WithError(err).Warn("secure headers blocked request")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
