package domain

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("unauthorized")

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError carries the quantity that was actually available
// when the adjustment or reservation was refused.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for %s (available %d)", name, e.Available)
}

type InvalidTransitionError struct {
	Current OrderStatus
	Allowed []OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("order status %s is terminal", e.Current)
	}
	return fmt.Sprintf("cannot transition from %s (allowed: %v)", e.Current, e.Allowed)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
