package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Underwriter/internal/cache"
	"github.com/MikeSquared-Agency/Underwriter/internal/hermes"
	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

// Deps are the router's collaborators. Cache, Hermes and Store are optional.
type Deps struct {
	Engines   *EngineSource
	Presenter *present.Presenter
	Cache     cache.ReportCache
	Hermes    hermes.Client
	Store     store.PolicyStore
	RateLimit int
	Logger    *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(RateLimitMiddleware(d.RateLimit))

	simulations := NewSimulationsHandler(d.Engines, d.Presenter, d.Cache, d.Hermes, d.Logger)
	policies := NewPolicyHandler(d.Engines, d.Store)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulations", simulations.Create)
		r.Get("/policy", policies.Active)
		r.Get("/policy/versions", policies.Versions)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
