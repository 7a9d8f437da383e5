package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"dealerfeed/internal/middleware"
)

type Routes struct {
	HTTP    *HTTPHandler
	WS      *WSHandler
	Health  *HealthHandler
	Stats   *StatsHandler
	Metrics http.Handler

	Limiter  *middleware.RateLimiter // optional
	Counters *Stats
	Logger   *slog.Logger
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(AccessLog(rt.Logger, rt.Counters))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", rt.Health.Healthz)
	r.Get("/readyz", rt.Health.Readyz)
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		if rt.Limiter != nil {
			r.Use(rt.Limiter.Middleware)
		}

		r.Get("/ws", rt.WS.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(GzipMiddleware)
			r.Get("/vehicles", rt.HTTP.ListVehicles)
			r.Get("/vehicles/{adNumber}", rt.HTTP.GetVehicle)
			r.Get("/feed/status", rt.HTTP.GetFeedStatus)
			r.Get("/stats", rt.Stats.GetStats)
		})
	})

	return r
}
