package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qbazz/storefront/pkg/health"
	"github.com/qbazz/storefront/pkg/middleware"
)

// ServiceName labels the storefront's metrics and spans.
const ServiceName = "storefront"

// Handlers groups the storefront's HTTP handlers.
type Handlers struct {
	Catalog      *CatalogHandler
	Pages        *PageHandler
	Search       *SearchHandler
	Chat         *ChatHandler
	Registration *RegistrationHandler
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Health      *health.Handler
	Visitors    sessions.Store
	ChatLimiter *middleware.LimiterStore
	CORS        middleware.CORSConfig
}

// NewRouter creates a chi router with all storefront routes registered.
// The chat stream is mounted outside the compression and timeout middleware
// so fragments reach the browser as they are produced.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestLogger(logger))
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			promhttp.Handler().ServeHTTP(w, r)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Visitor(cfg.Visitors, logger))
		r.Use(middleware.RequestLogger(logger))
		r.Use(requireVisitor)
		r.Use(ContentTypeJSON)

		r.With(
			middleware.RateLimit(cfg.ChatLimiter, middleware.IPKey, logger),
			middleware.RateLimit(cfg.ChatLimiter, middleware.VisitorKey, logger),
		).Post("/chat/messages", h.Chat.SendMessage)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(30 * time.Second))

			r.Get("/products", h.Catalog.ListProducts)
			r.Get("/categories", h.Catalog.ListCategories)
			r.Get("/stores", h.Catalog.ListStores)
			r.Get("/catalog", h.Catalog.Status)
			r.Post("/catalog/reload", h.Catalog.Reload)

			r.Get("/pages/{name}", h.Pages.GetPage)

			r.Get("/search", h.Search.Local)
			r.Get("/search/remote", h.Search.Remote)
			r.Get("/search/history", h.Search.GetHistory)
			r.Post("/search/history", h.Search.SubmitQuery)
			r.Delete("/search/history", h.Search.ClearHistory)
			r.Delete("/search/history/entry", h.Search.RemoveEntry)

			r.Get("/chat", h.Chat.Open)
			r.Delete("/chat", h.Chat.Close)

			r.Get("/registration", h.Registration.Get)
			r.Delete("/registration", h.Registration.Reset)
			r.Put("/registration/value", h.Registration.SetValue)
			r.Put("/registration/location", h.Registration.SetLocation)
			r.Post("/registration/next", h.Registration.Next)
			r.Post("/registration/submit", h.Registration.Submit)
		})
	})

	return r
}
