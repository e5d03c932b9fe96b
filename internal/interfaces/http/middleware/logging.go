package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
)

// slowRequestThreshold marks requests worth a Warn entry.
const slowRequestThreshold = 3 * time.Second

// skipLogPaths are high-frequency probe paths kept out of the request log.
var skipLogPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

// RequestLogging logs every request with method, route, status, and latency,
// and records the HTTP metrics.  metrics may be nil.
func RequestLogging(log logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	log = log.Named("http")

	return func(c *gin.Context) {
		// FullPath gives the route pattern; raw URLs would explode metric
		// cardinality.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if metrics != nil {
			active := metrics.HTTPActiveRequests.WithLabelValues(c.Request.Method, route)
			active.Inc()
			defer active.Dec()
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()

		if metrics != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}

		if _, skip := skipLogPaths[c.Request.URL.Path]; skip {
			return
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			log.Error("Request failed", fields...)
		case status >= 400:
			log.Warn("Request rejected", fields...)
		case elapsed > slowRequestThreshold:
			log.Warn("Slow request", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
