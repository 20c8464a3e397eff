package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- GET /api/dashboard?period=today|week|month|year ---
func (h *Handler) Dashboard(c *gin.Context) {
	period := c.DefaultQuery("period", "today")

	dashboard, err := h.reports.Dashboard(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// --- GET /api/dashboard/profit-loss?start_date=...&end_date=... ---
func (h *Handler) ProfitLoss(c *gin.Context) {
	start, end, ok := requiredDateRange(c)
	if !ok {
		return
	}

	statement, err := h.reports.ProfitLoss(start, end)
	if err != nil {
		serviceError(c, err, "Failed to build profit and loss report")
		return
	}

	c.JSON(http.StatusOK, statement)
}
