package services

import (
	"database/sql"
	"errors"

	"stellar/internal/domain"
	applog "stellar/internal/log"
	"stellar/internal/repos"
)

// StockLedger is the only path through which product stock changes. Each
// AdjustStock call is independently atomic; a multi-item reservation is a
// sequence of ledger calls compensated by the reservation service, not one
// shared transaction.
type StockLedger struct {
	Products *repos.ProductRepo
}

func NewStockLedger(products *repos.ProductRepo) *StockLedger {
	return &StockLedger{Products: products}
}

// AdjustStock applies delta (negative to reserve, positive to release) and
// returns the updated product. A delta that would drive the quantity below
// zero fails with InsufficientStockError and writes nothing.
func (l *StockLedger) AdjustStock(productID string, delta int) (domain.Product, error) {
	p, err := l.Products.AdjustStock(productID, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, &domain.ProductNotFoundError{ProductID: productID}
		}
		return domain.Product{}, err
	}
	applog.OpInfo("stock.adjust", map[string]any{
		"product_id": productID,
		"delta":      delta,
		"qty":        p.StockQuantity,
	})
	return p, nil
}
