// Package stock is the only legal mutator of Product.StockQuantity.
package stock

import (
	"errors"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/models"

	"gorm.io/gorm"
)

// Decrease subtracts quantity from the product's stock. The decrement is
// a single conditional UPDATE, so the database serializes it against
// concurrent sales touching the same row: two transactions can never
// both pass a stale stock check and oversell.
//
// Returns ErrInsufficientStock (stock untouched) when quantity exceeds
// the current stock, ErrNotFound when the product does not exist.
func Decrease(db *gorm.DB, productID uint, quantity int) error {
	result := db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Zero rows means either the product is gone or the stock is short.
		var product models.Product
		if err := db.Select("id", "name").First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", productID)
			}
			return err
		}
		return apperr.InsufficientStock(product.Name)
	}
	return nil
}

// Increase adds quantity back to the product's stock unconditionally.
func Increase(db *gorm.DB, productID uint, quantity int) error {
	result := db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product", productID)
	}
	return nil
}
