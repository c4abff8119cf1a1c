package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vintagevault/pricing-service/internal/sweepers"
)

// DashboardHandler serves the cached admin dashboard snapshot.
type DashboardHandler struct {
	sweeper *sweepers.DashboardSweeper
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(sweeper *sweepers.DashboardSweeper) *DashboardHandler {
	return &DashboardHandler{sweeper: sweeper}
}

// Metrics returns the latest dashboard snapshot
// GET /internal/dashboard/metrics
func (h *DashboardHandler) Metrics(c *gin.Context) {
	current := h.sweeper.Current()
	if current == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics not yet available"})
		return
	}
	c.JSON(http.StatusOK, current)
}
