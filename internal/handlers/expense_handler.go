package handlers

import (
	"errors"
	"net/http"

	"go-backoffice/internal/models"
	"go-backoffice/internal/pagination"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRequest struct {
	Category      string          `json:"category" binding:"required,max=100"`
	Description   string          `json:"description" binding:"required,max=255"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   string          `json:"expense_date" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=cash card transfer check"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=100"`
	Notes         string          `json:"notes"`
}

type ExpenseUpdateRequest struct {
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	Description   *string          `json:"description" binding:"omitempty,max=255"`
	Amount        *decimal.Decimal `json:"amount"`
	ExpenseDate   *string          `json:"expense_date"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=cash card transfer check"`
	ReceiptNumber *string          `json:"receipt_number" binding:"omitempty,max=100"`
	Notes         *string          `json:"notes"`
}

func (h *Handler) expenseQuery(c *gin.Context) (*gorm.DB, bool) {
	q := h.db.Model(&models.Expense{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("description LIKE ? OR category LIKE ? OR receipt_number LIKE ?", like, like, like)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	start, end, ok := dateRangeQuery(c)
	if !ok {
		return nil, false
	}
	if start != nil {
		q = q.Where("expense_date >= ?", dayStart(*start))
	}
	if end != nil {
		q = q.Where("expense_date <= ?", dayEnd(*end))
	}
	return q, true
}

// --- GET /api/expenses ---
func (h *Handler) ListExpenses(c *gin.Context) {
	q, ok := h.expenseQuery(c)
	if !ok {
		return
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}

	p := pageParams(c)
	var expenses []models.Expense
	if err := q.Session(&gorm.Session{}).Preload("User").Order("expense_date DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}

	c.JSON(http.StatusOK, pagination.NewResult(expenses, total, p))
}

// --- POST /api/expenses ---
func (h *Handler) CreateExpense(c *gin.Context) {
	var input ExpenseRequest
	if !bindJSON(c, &input) {
		return
	}
	if input.Amount.IsNegative() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"amount": "must not be negative"},
		})
		return
	}

	expenseDate, err := parseDateString(input.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"expense_date": "must be a date in YYYY-MM-DD format"},
		})
		return
	}

	expense := models.Expense{
		UserID:        currentUserID(c),
		Category:      input.Category,
		Description:   input.Description,
		Amount:        input.Amount,
		ExpenseDate:   expenseDate,
		PaymentMethod: input.PaymentMethod,
		ReceiptNumber: input.ReceiptNumber,
		Notes:         input.Notes,
	}
	if err := h.db.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Expense created successfully", "expense": expense})
}

// --- GET /api/expenses/:id ---
func (h *Handler) GetExpense(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var expense models.Expense
	if err := h.db.Preload("User").First(&expense, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	c.JSON(http.StatusOK, expense)
}

// --- PUT /api/expenses/:id ---
func (h *Handler) UpdateExpense(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var expense models.Expense
	if err := h.db.First(&expense, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	var input ExpenseUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid", "errors": gin.H{"amount": "must not be negative"}})
			return
		}
		updates["amount"] = *input.Amount
	}
	if input.ExpenseDate != nil {
		expenseDate, err := parseDateString(*input.ExpenseDate)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid", "errors": gin.H{"expense_date": "must be a date in YYYY-MM-DD format"}})
			return
		}
		updates["expense_date"] = expenseDate
	}
	if input.PaymentMethod != nil {
		updates["payment_method"] = *input.PaymentMethod
	}
	if input.ReceiptNumber != nil {
		updates["receipt_number"] = *input.ReceiptNumber
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := h.db.Model(&expense).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully", "expense": expense})
}

// --- DELETE /api/expenses/:id ---
func (h *Handler) DeleteExpense(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var expense models.Expense
	if err := h.db.First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	if err := h.db.Delete(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// --- GET /api/expenses/categories ---
func (h *Handler) ExpenseCategories(c *gin.Context) {
	var categories []string
	err := h.db.Model(&models.Expense{}).
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

// --- GET /api/expenses/summary ---
func (h *Handler) ExpenseSummary(c *gin.Context) {
	q, ok := h.expenseQuery(c)
	if !ok {
		return
	}

	var totalRow struct {
		Total decimal.Decimal
	}
	if err := q.Session(&gorm.Session{}).Select("COALESCE(SUM(amount), 0) AS total").Scan(&totalRow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	byCategory := []struct {
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
	}{}
	if err := q.Session(&gorm.Session{}).Select("category, SUM(amount) AS total").Group("category").Scan(&byCategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_expenses":       totalRow.Total.Round(2),
		"expenses_by_category": byCategory,
	})
}
