package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type metricsExposer interface {
	Handler() http.Handler
}

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	metrics metricsExposer
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics metricsExposer) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
