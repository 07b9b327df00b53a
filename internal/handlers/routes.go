package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	origins := h.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)

	// WebSocket stays outside the timeout middleware
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	if h.assetServer != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", h.assetServer))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/api/dataset", h.handleGetDataset)
		r.Get("/api/categories", h.handleGetCategories)
		r.Get("/api/timeline", h.handleGetTimeline)
		r.Get("/api/activities/{activity}", h.handleFindActivity)

		r.Route("/api/screens", func(r chi.Router) {
			r.Get("/", h.handleGetScreens)
			r.Route("/{screen}", func(r chi.Router) {
				r.Get("/", h.handleGetScreen)
				r.Get("/categories", h.handleGetScreenCategories)
				r.Get("/activities", h.handleGetScreenActivities)
				r.Get("/activities/{activity}", h.handleGetScreenActivity)
				r.Get("/activities/{activity}/layout", h.handleGetActivityLayout)
				r.Get("/activities/{activity}/qr", h.handleGetActivityQR)
			})
		})

		// Feed publishing (protected)
		if h.Hub != nil && h.Auth != nil {
			r.With(h.Auth.RequireToken).Post("/api/feed", h.handlePublishFeed)
		}
	})

	return r
}
