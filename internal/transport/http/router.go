package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"retailflow/internal/infrastructure"
	"retailflow/internal/middleware"
)

// RouterConfig carries the dependencies of the HTTP surface
type RouterConfig struct {
	Runner       PipelineRunner
	History      RunHistory
	Telemetry    *infrastructure.TelemetryProviders
	Version      string
	RunRateLimit float64 // sustained POSTed runs per second, 0 disables limiting
	RunBurst     int
	Logger       *slog.Logger
}

// NewRouter builds the chi router serving every route of the service
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	var limiter *middleware.RateLimiter
	if cfg.RunRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RunRateLimit, max(cfg.RunBurst, 1), logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.NewOTelMiddleware(cfg.Telemetry).Handler)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	health := NewHealthHandler(cfg.Version)
	r.Get("/healthz", health.HealthCheck)

	var metrics http.Handler = promhttp.Handler()
	if cfg.Telemetry != nil && cfg.Telemetry.PrometheusHTTP != nil {
		metrics = cfg.Telemetry.PrometheusHTTP
	}
	r.Method(http.MethodGet, "/metrics", metrics)

	runs := NewRunsHandler(cfg.Runner, cfg.History, limiter, logger)
	r.Mount("/api/pipeline/runs", runs.Routes())
	return r
}
