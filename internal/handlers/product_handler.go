package handlers

import (
	"errors"
	"net/http"

	"go-backoffice/internal/models"
	"go-backoffice/internal/pagination"
	"go-backoffice/internal/reports"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name          string          `json:"name" binding:"required,max=255"`
	SKU           string          `json:"sku" binding:"required,max=100"`
	Description   string          `json:"description"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	Unit          string          `json:"unit" binding:"required,max=50"`
	Category      string          `json:"category" binding:"max=100"`
	IsActive      *bool           `json:"is_active"`
}

type ProductUpdateRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=255"`
	SKU           *string          `json:"sku" binding:"omitempty,max=100"`
	Description   *string          `json:"description"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	StockQuantity *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	Unit          *string          `json:"unit" binding:"omitempty,max=50"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	IsActive      *bool            `json:"is_active"`
}

// productJSON decorates a product with its computed profit margin.
func productJSON(p models.Product) gin.H {
	return gin.H{"product": p, "profit_margin": p.ProfitMargin().Round(2)}
}

// --- GET /api/products ---
func (h *Handler) ListProducts(c *gin.Context) {
	q := h.db.Model(&models.Product{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR sku LIKE ? OR description LIKE ?", like, like, like)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if active := c.Query("is_active"); active != "" {
		q = q.Where("is_active = ?", active == "true" || active == "1")
	}
	if low := c.Query("low_stock"); low == "true" || low == "1" {
		q = q.Where("stock_quantity <= ?", reports.LowStockThreshold)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	p := pageParams(c)
	var products []models.Product
	if err := q.Session(&gorm.Session{}).Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, pagination.NewResult(products, total, p))
}

// --- POST /api/products ---
func (h *Handler) CreateProduct(c *gin.Context) {
	var input ProductRequest
	if !bindJSON(c, &input) {
		return
	}
	if input.CostPrice.IsNegative() || input.SellingPrice.IsNegative() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"cost_price": "must not be negative", "selling_price": "must not be negative"},
		})
		return
	}

	product := models.Product{
		Name:          input.Name,
		SKU:           input.SKU,
		Description:   input.Description,
		CostPrice:     input.CostPrice,
		SellingPrice:  input.SellingPrice,
		StockQuantity: input.StockQuantity,
		Unit:          input.Unit,
		Category:      input.Category,
		IsActive:      true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := h.db.Create(&product).Error; err != nil {
		// Usually the unique SKU index
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"sku": "has already been taken"},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// --- GET /api/products/:id ---
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, productJSON(product))
}

// --- PUT /api/products/:id ---
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var input ProductUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	// Only touch what was sent (partial update)
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.SKU != nil {
		updates["sku"] = *input.SKU
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CostPrice != nil {
		if input.CostPrice.IsNegative() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid", "errors": gin.H{"cost_price": "must not be negative"}})
			return
		}
		updates["cost_price"] = *input.CostPrice
	}
	if input.SellingPrice != nil {
		if input.SellingPrice.IsNegative() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid", "errors": gin.H{"selling_price": "must not be negative"}})
			return
		}
		updates["selling_price"] = *input.SellingPrice
	}
	if input.StockQuantity != nil {
		updates["stock_quantity"] = *input.StockQuantity
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE /api/products/:id ---
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	// Soft delete: the row keeps its sale-item history
	if err := h.db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- GET /api/products/categories ---
func (h *Handler) ProductCategories(c *gin.Context) {
	var categories []string
	err := h.db.Model(&models.Product{}).
		Where("category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}
