// Package apperr defines the failure taxonomy shared by the services
// and mapped to HTTP status codes at the handler boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - a referenced record does not exist (or is soft-deleted).
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock - a stock decrement would go negative.
	// Aborts the enclosing sale transaction.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidDateRange - end_date is before start_date.
	ErrInvalidDateRange = errors.New("end_date must be on or after start_date")

	// ErrValidation - input is out of range in a way the binding layer
	// cannot express (e.g. negative money amounts).
	ErrValidation = errors.New("validation failed")
)

// NotFound wraps ErrNotFound with the entity and id that were looked up.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// InsufficientStock wraps ErrInsufficientStock with the product name.
func InsufficientStock(productName string) error {
	return fmt.Errorf("insufficient stock for %s: %w", productName, ErrInsufficientStock)
}
