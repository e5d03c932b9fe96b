// Package http assembles the gin route tree and the HTTP server for the
// prediction API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/handlers"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.  Nil handlers leave their routes unregistered, which
// keeps partial wiring possible in tests.
type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	TenderHandler     *handlers.TenderHandler
	PredictionHandler *handlers.PredictionHandler
	CompanyHandler    *handlers.CompanyHandler
	HealthHandler     *handlers.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	CORS           *middleware.CORSConfig

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	// Mode is the gin mode: debug, release, or test.
	Mode string
}

// NewRouter builds the engine: global middleware, public probes, the login
// endpoint, and the authenticated /api/v1 group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))
	}
	cors := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		cors = *cfg.CORS
	}
	r.Use(middleware.CORS(cors))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")

	if cfg.AuthHandler != nil {
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	protected := api.Group("")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.AuthHandler != nil {
		protected.GET("/auth/me", cfg.AuthHandler.Me)
	}
	if cfg.TenderHandler != nil {
		protected.GET("/tenders", cfg.TenderHandler.Search)
		protected.GET("/tenders/:id", cfg.TenderHandler.Get)
		protected.GET("/filters/options", cfg.TenderHandler.FilterOptions)
	}
	if cfg.PredictionHandler != nil {
		protected.POST("/predictions", cfg.PredictionHandler.Predict)
		protected.POST("/predictions/bulk", cfg.PredictionHandler.PredictBulk)
	}
	if cfg.CompanyHandler != nil {
		protected.GET("/companies/strengths", cfg.CompanyHandler.Strengths)
	}

	return r
}
