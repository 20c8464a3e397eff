// Package sales builds and reverses sale aggregates. A sale header, its
// line items and their stock decrements commit or roll back as one unit.
package sales

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-backoffice/internal/apperr"
	"go-backoffice/internal/models"
	"go-backoffice/internal/stock"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Orchestrator struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Orchestrator {
	return &Orchestrator{db: db}
}

// ItemInput is one requested line of a sale.
type ItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateInput carries everything needed to record a sale. The user id is
// passed separately by the caller, never read from ambient state.
type CreateInput struct {
	CustomerName  string
	SaleDate      time.Time
	PaymentMethod string
	PaymentStatus string
	Notes         string
	Items         []ItemInput
}

// UpdateInput - only payment status and notes may change after creation.
// Line items and totals are immutable.
type UpdateInput struct {
	PaymentStatus *string
	Notes         *string
}

// Create records a sale atomically: header, items with cost-price
// snapshots, and one stock decrement per item. Any failure rolls the
// whole unit back; no partial sale is ever observable.
func (o *Orchestrator) Create(userID uint, in CreateInput) (*models.Sale, error) {
	// Every item must reference an existing product before we open the
	// transaction. Cost prices are snapshotted from this read.
	products := make(map[uint]models.Product, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be at least 1: %w", apperr.ErrValidation)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("unit_price must not be negative: %w", apperr.ErrValidation)
		}
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		var product models.Product
		if err := o.db.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("product", item.ProductID)
			}
			return nil, err
		}
		products[item.ProductID] = product
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	// No tax or discount in the current model
	totalAmount := subtotal

	var sale models.Sale
	err := o.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextSaleNumber(tx, time.Now())
		if err != nil {
			return err
		}

		sale = models.Sale{
			SaleNumber:    number,
			CustomerName:  in.CustomerName,
			UserID:        userID,
			SaleDate:      in.SaleDate,
			Subtotal:      subtotal,
			TotalAmount:   totalAmount,
			PaymentMethod: in.PaymentMethod,
			PaymentStatus: in.PaymentStatus,
			Notes:         in.Notes,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, item := range in.Items {
			product := products[item.ProductID]
			saleItem := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				CostPrice: product.CostPrice,
				Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			}
			if err := tx.Create(&saleItem).Error; err != nil {
				return err
			}
			if err := stock.Decrease(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			sale.Items = append(sale.Items, saleItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload with product details for the response
	if err := o.db.Preload("Items.Product").First(&sale, sale.ID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// Delete restores the stock of every line item, then soft-deletes the
// sale. Runs in one transaction; a failure leaves stock untouched.
func (o *Orchestrator) Delete(saleID uint) error {
	var sale models.Sale
	if err := o.db.Preload("Items").First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("sale", saleID)
		}
		return err
	}

	return o.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			if err := stock.Increase(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.Delete(&sale).Error
	})
}

// Update changes payment status and/or notes. Nothing else about a sale
// is mutable after creation.
func (o *Orchestrator) Update(saleID uint, in UpdateInput) (*models.Sale, error) {
	var sale models.Sale
	if err := o.db.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sale", saleID)
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.PaymentStatus != nil {
		updates["payment_status"] = *in.PaymentStatus
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := o.db.Model(&sale).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if err := o.db.Preload("Items.Product").First(&sale, sale.ID).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// nextSaleNumber generates SALE-YYYYMMDD-NNNN where NNNN continues the
// sequence of sales created on the same calendar day, starting at 0001.
func nextSaleNumber(tx *gorm.DB, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var last models.Sale
	err := tx.Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Order("id DESC").
		First(&last).Error

	number := 1
	switch {
	case err == nil:
		suffix := last.SaleNumber
		if len(suffix) >= 4 {
			suffix = suffix[len(suffix)-4:]
		}
		n, parseErr := strconv.Atoi(suffix)
		if parseErr != nil {
			return "", fmt.Errorf("malformed sale number %q: %w", last.SaleNumber, parseErr)
		}
		number = n + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first sale of the day
	default:
		return "", err
	}

	return fmt.Sprintf("SALE-%s-%04d", now.Format("20060102"), number), nil
}
