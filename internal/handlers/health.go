package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vintagevault/pricing-service/internal/database"
)

var startTime = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthCheck handles the health check endpoint
// GET /health
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
	}

	// Check database connection
	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
