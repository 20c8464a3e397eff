package handlers

import (
	"errors"
	"net/http"

	"go-backoffice/internal/models"
	"go-backoffice/internal/pagination"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CustomerRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" binding:"max=20"`
	Address      string `json:"address"`
	CustomerType string `json:"customer_type" binding:"required,oneof=regular wholesale retail"`
}

type CustomerUpdateRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=255"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone" binding:"omitempty,max=20"`
	Address      *string `json:"address"`
	CustomerType *string `json:"customer_type" binding:"omitempty,oneof=regular wholesale retail"`
}

// --- GET /api/customers ---
func (h *Handler) ListCustomers(c *gin.Context) {
	q := h.db.Model(&models.Customer{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}
	if customerType := c.Query("customer_type"); customerType != "" {
		q = q.Where("customer_type = ?", customerType)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	p := pageParams(c)
	var customers []models.Customer
	if err := q.Session(&gorm.Session{}).Order("created_at DESC").Offset(p.Offset()).Limit(p.PerPage).Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, pagination.NewResult(customers, total, p))
}

// --- POST /api/customers ---
func (h *Handler) CreateCustomer(c *gin.Context) {
	var input CustomerRequest
	if !bindJSON(c, &input) {
		return
	}

	customer := models.Customer{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		CustomerType: input.CustomerType,
	}
	if err := h.db.Create(&customer).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid",
			"errors":  gin.H{"email": "has already been taken"},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Customer created successfully", "customer": customer})
}

// --- GET /api/customers/:id ---
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	// Sales are matched by name only; there is no foreign key
	var customerSales []models.Sale
	if err := h.db.Where("customer_name = ?", customer.Name).Find(&customerSales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customer sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer, "sales": customerSales})
}

// --- PUT /api/customers/:id ---
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	var input CustomerUpdateRequest
	if !bindJSON(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.CustomerType != nil {
		updates["customer_type"] = *input.CustomerType
	}

	if len(updates) > 0 {
		if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully", "customer": customer})
}

// --- DELETE /api/customers/:id ---
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	// Soft delete; past sales keep their customer_name text
	if err := h.db.Delete(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
