package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/odontoprint/gapheal/internal/api"
	"github.com/odontoprint/gapheal/internal/api/handlers"
	"github.com/odontoprint/gapheal/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AuthValidator  middleware.AuthValidator
	HealingHandler *handlers.HealingHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		r.Use(middleware.RequireAdmin)

		r.Route("/gap-healing", func(r chi.Router) {
			r.Post("/generate", cfg.HealingHandler.Generate)
			r.Get("/drafts", cfg.HealingHandler.List)
			r.Post("/drafts/{id}/approve", cfg.HealingHandler.Approve)
			r.Post("/drafts/{id}/reject", cfg.HealingHandler.Reject)
		})
	})

	return r
}
