package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	version string
	dbPing  func() error
}

// NewHealthHandler creates a HealthHandler that reports the given version.
func NewHealthHandler(version string, dbPing func() error) *HealthHandler {
	return &HealthHandler{version: version, dbPing: dbPing}
}

// Live returns service liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns readiness, checking the database connection.
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
