package handlers

import (
	"net/http"

	"go-backoffice/internal/models"
	"go-backoffice/internal/pagination"
	"go-backoffice/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	CustomerName  string            `json:"customer_name" binding:"max=255"`
	SaleDate      string            `json:"sale_date" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=cash card transfer credit"`
	PaymentStatus string            `json:"payment_status" binding:"required,oneof=paid pending partial"`
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateSaleRequest struct {
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=paid pending partial"`
	Notes         *string `json:"notes"`
}

func (h *Handler) saleQuery(c *gin.Context) (*gorm.DB, bool) {
	q := h.db.Model(&models.Sale{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("sale_number LIKE ? OR customer_name LIKE ?", like, like)
	}
	if status := c.Query("payment_status"); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if method := c.Query("payment_method"); method != "" {
		q = q.Where("payment_method = ?", method)
	}

	start, end, ok := dateRangeQuery(c)
	if !ok {
		return nil, false
	}
	if start != nil {
		q = q.Where("sale_date >= ?", dayStart(*start))
	}
	if end != nil {
		q = q.Where("sale_date <= ?", dayEnd(*end))
	}
	return q, true
}

// --- GET /api/sales ---
func (h *Handler) ListSales(c *gin.Context) {
	q, ok := h.saleQuery(c)
	if !ok {
		return
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	p := pageParams(c)
	var saleRows []models.Sale
	err := q.Session(&gorm.Session{}).
		Preload("User").Preload("Items.Product").
		Order("sale_date DESC").
		Offset(p.Offset()).Limit(p.PerPage).
		Find(&saleRows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, pagination.NewResult(saleRows, total, p))
}

// --- POST /api/sales ---
func (h *Handler) CreateSale(c *gin.Context) {
	var input CreateSaleRequest
	if !bindJSON(c, &input) {
		return
	}

	saleDate, err := parseDateString(input.SaleDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"sale_date": "must be a date in YYYY-MM-DD format"},
		})
		return
	}

	items := make([]sales.ItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, sales.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	sale, err := h.sales.Create(currentUserID(c), sales.CreateInput{
		CustomerName:  input.CustomerName,
		SaleDate:      saleDate,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: input.PaymentStatus,
		Notes:         input.Notes,
		Items:         items,
	})
	if err != nil {
		serviceError(c, err, "Failed to create sale")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Sale created successfully", "sale": sale})
}

// --- GET /api/sales/:id ---
func (h *Handler) GetSale(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var sale models.Sale
	if err := h.db.Preload("User").Preload("Items.Product").First(&sale, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sale":         sale,
		"total_profit": sale.TotalProfit().Round(2),
		"total_cost":   sale.TotalCost().Round(2),
	})
}

// --- PUT /api/sales/:id ---
func (h *Handler) UpdateSale(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var input UpdateSaleRequest
	if !bindJSON(c, &input) {
		return
	}

	sale, err := h.sales.Update(id, sales.UpdateInput{
		PaymentStatus: input.PaymentStatus,
		Notes:         input.Notes,
	})
	if err != nil {
		serviceError(c, err, "Failed to update sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale updated successfully", "sale": sale})
}

// --- DELETE /api/sales/:id ---
func (h *Handler) DeleteSale(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.sales.Delete(id); err != nil {
		serviceError(c, err, "Failed to delete sale")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}

// --- GET /api/sales/summary ---
func (h *Handler) SalesSummary(c *gin.Context) {
	q, ok := h.saleQuery(c)
	if !ok {
		return
	}

	var totalRow struct {
		Total decimal.Decimal
	}
	if err := q.Session(&gorm.Session{}).Select("COALESCE(SUM(total_amount), 0) AS total").Scan(&totalRow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	average := decimal.Zero
	if count > 0 {
		average = totalRow.Total.Div(decimal.NewFromInt(count)).Round(2)
	}

	c.JSON(http.StatusOK, gin.H{
		"total_sales":         totalRow.Total.Round(2),
		"total_transactions":  count,
		"average_transaction": average,
	})
}
