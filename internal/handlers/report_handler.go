package handlers

import (
	"errors"
	"net/http"

	"go-backoffice/internal/models"
	"go-backoffice/internal/pagination"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GenerateReportRequest struct {
	ReportType string `json:"report_type" binding:"required,oneof=daily weekly monthly custom profit_loss"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

// --- POST /api/reports/generate ---
func (h *Handler) GenerateReport(c *gin.Context) {
	var input GenerateReportRequest
	if !bindJSON(c, &input) {
		return
	}

	startDate, err := parseDateString(input.StartDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"start_date": "must be a date in YYYY-MM-DD format"},
		})
		return
	}
	endDate, err := parseDateString(input.EndDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"end_date": "must be a date in YYYY-MM-DD format"},
		})
		return
	}

	report, err := h.reports.Generate(currentUserID(c), input.ReportType, startDate, endDate)
	if err != nil {
		serviceError(c, err, "Failed to generate report")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Report generated successfully", "report": report})
}

// --- GET /api/reports ---
func (h *Handler) ListReports(c *gin.Context) {
	q := h.db.Model(&models.Report{})
	if reportType := c.Query("report_type"); reportType != "" {
		q = q.Where("report_type = ?", reportType)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	p := pageParams(c)
	var reportRows []models.Report
	err := q.Session(&gorm.Session{}).
		Preload("User").
		Order("created_at DESC").
		Offset(p.Offset()).Limit(p.PerPage).
		Find(&reportRows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, pagination.NewResult(reportRows, total, p))
}

// --- GET /api/reports/:id ---
func (h *Handler) GetReport(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var report models.Report
	if err := h.db.Preload("User").First(&report, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// --- DELETE /api/reports/:id ---
func (h *Handler) DeleteReport(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var report models.Report
	if err := h.db.First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	if err := h.db.Delete(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// --- GET /api/reports/sales ---
func (h *Handler) SalesReport(c *gin.Context) {
	start, end, ok := requiredDateRange(c)
	if !ok {
		return
	}

	report, err := h.reports.SalesReport(start, end)
	if err != nil {
		serviceError(c, err, "Failed to build sales report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// --- GET /api/reports/expenses ---
func (h *Handler) ExpenseReport(c *gin.Context) {
	start, end, ok := requiredDateRange(c)
	if !ok {
		return
	}

	report, err := h.reports.ExpenseReport(start, end)
	if err != nil {
		serviceError(c, err, "Failed to build expense report")
		return
	}

	c.JSON(http.StatusOK, report)
}
