package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
)

// dependencyCheckTimeout bounds each readiness probe.
const dependencyCheckTimeout = 2 * time.Second

// DependencyCheck probes one backing service.
type DependencyCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.  Readiness fans
// out to every registered dependency and reports per-dependency status.
type HealthHandler struct {
	checks  map[string]DependencyCheck
	metrics *prometheus.AppMetrics
	log     logging.Logger
}

// NewHealthHandler builds the probe handler.  metrics may be nil.
func NewHealthHandler(checks map[string]DependencyCheck, metrics *prometheus.AppMetrics, log logging.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, metrics: metrics, log: log.Named("handler.health")}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports whether every backing dependency answers.  Any failure
// yields 503 with the failing dependencies named.
func (h *HealthHandler) Readiness(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), dependencyCheckTimeout)
		err := check(ctx)
		cancel()

		up := 1.0
		if err != nil {
			up = 0
			status = http.StatusServiceUnavailable
			deps[name] = "down"
			h.log.Warn("Dependency check failed",
				logging.String("dependency", name), logging.Err(err))
		} else {
			deps[name] = "up"
		}
		if h.metrics != nil {
			h.metrics.HealthCheckStatus.WithLabelValues(name).Set(up)
		}
	}

	body := gin.H{"status": "ok", "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
