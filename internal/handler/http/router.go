package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds the collaborators and settings of the HTTP surface.
type RouterConfig struct {
	Sessions    Sessions
	Health      *health.Handler
	RateLimiter *middleware.RateLimiter // optional
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Identity)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cartHandler := NewCartHandler(logger)
	wishlistHandler := NewWishlistHandler(logger)
	sessionHandler := NewSessionHandler(cfg.Sessions, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)
		r.Use(SessionFromHeader)
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}

		r.Delete("/session", sessionHandler.EndSession)

		r.Group(func(r chi.Router) {
			r.Use(OpenSession(cfg.Sessions))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{itemId}", cartHandler.UpdateItemQuantity)
				r.Delete("/items/{itemId}", cartHandler.RemoveItem)
				r.Post("/products/{productId}", cartHandler.AddProduct)
				r.Post("/panel/toggle", cartHandler.TogglePanel)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlistHandler.GetWishlist)
				r.Delete("/", wishlistHandler.ClearWishlist)
				r.Post("/items", wishlistHandler.AddItem)
				r.Post("/items/toggle", wishlistHandler.ToggleItem)
				r.Get("/items/{itemId}", wishlistHandler.GetItem)
				r.Delete("/items/{itemId}", wishlistHandler.RemoveItem)
				r.Post("/products/{productId}/toggle", wishlistHandler.ToggleProduct)
				r.Post("/panel/toggle", wishlistHandler.TogglePanel)
			})
		})
	})

	return r
}
