package repos

import (
	"github.com/jmoiron/sqlx"

	"stellar/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, COALESCE(description,'') AS description, price, stock_quantity,
  track_inventory, allow_backorder, active, created_at, COALESCE(updated_at,'') AS updated_at`

// FindByID returns sql.ErrNoRows untouched when the product is absent;
// services map that to the domain error.
func (r *ProductRepo) FindByID(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT`+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// AdjustStock applies delta to one product row inside a single transaction.
// The read and the conditional write share the transaction, so for any one
// row adjustments form a strictly serial sequence: no lost update can slip
// between the SELECT and the UPDATE, and the quantity never goes negative.
// Returns sql.ErrNoRows for a missing product and
// *domain.InsufficientStockError when delta would take the row below zero;
// in both cases nothing is written.
func (r *ProductRepo) AdjustStock(id string, delta int) (domain.Product, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var p domain.Product
	if err := tx.Get(&p, `SELECT`+productCols+` FROM products WHERE id = ?`, id); err != nil {
		return domain.Product{}, err
	}

	newQty := p.StockQuantity + delta
	if newQty < 0 {
		return domain.Product{}, &domain.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.StockQuantity,
		}
	}

	if _, err := tx.Exec(`
		UPDATE products SET stock_quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, newQty, id); err != nil {
		return domain.Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Product{}, err
	}

	p.StockQuantity = newQty
	return p, nil
}
