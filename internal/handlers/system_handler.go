package handlers

import (
	"net/http"

	"triviaapi/internal/observability"
	serviceinterfaces "triviaapi/internal/services/interfaces"
	"triviaapi/internal/version"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves health and version information
type SystemHandler struct {
	serviceName string
	health      serviceinterfaces.HealthChecker
	logger      *observability.Logger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(serviceName string, health serviceinterfaces.HealthChecker, logger *observability.Logger) *SystemHandler {
	return &SystemHandler{
		serviceName: serviceName,
		health:      health,
		logger:      logger,
	}
}

// Health handles GET /health, reporting 503 when the database is unreachable
func (h *SystemHandler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Check(c.Request.Context()); err != nil {
			h.logger.Warn(c.Request.Context(), "Health check failed", map[string]interface{}{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"service":  h.serviceName,
				"database": "unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  h.serviceName,
		"database": "ok",
	})
}

// Version handles GET /version
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get(h.serviceName))
}
