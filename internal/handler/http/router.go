package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterConfig holds the handlers and settings the router is built from
type RouterConfig struct {
	Odds           *OddsHandler
	Auth           *AuthHandler
	Health         *HealthHandler
	WebSocket      *WebSocketHandler
	Gate           Authenticator
	MetricsHandler http.Handler // defaults to promhttp.Handler()
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with every route of the gateway
func NewRouter(config RouterConfig, logger zerolog.Logger) http.Handler {
	if config.MetricsHandler == nil {
		config.MetricsHandler = promhttp.Handler()
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", config.Health.handleHealth)
	r.Get("/ready", config.Health.handleReady)
	r.Method(http.MethodGet, "/metrics", config.MetricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.RequestTimeout))

		config.Auth.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(config.Gate, false, logger))
			config.Auth.RegisterRoutes(r)
			config.Odds.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(logger))
				config.Auth.RegisterAdminRoutes(r)
			})
		})
	})

	r.With(RequireAuth(config.Gate, true, logger)).Get("/ws", config.WebSocket.handleWebSocket)

	return r
}
