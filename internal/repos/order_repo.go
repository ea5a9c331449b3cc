package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"stellar/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderRow mirrors the orders table; risk factors live in a JSON column.
type orderRow struct {
	ID             string  `db:"id"`
	UserID         string  `db:"user_id"`
	Status         string  `db:"status"`
	Total          float64 `db:"total"`
	ShippingMethod string  `db:"shipping_method"`
	RiskScore      int     `db:"risk_score"`
	RiskLevel      string  `db:"risk_level"`
	RiskFactors    string  `db:"risk_factors_json"`
	RequiresReview bool    `db:"requires_review"`
	CancelReason   string  `db:"cancel_reason"`
	CancelledAt    string  `db:"cancelled_at"`
	CreatedAt      string  `db:"created_at"`
}

type OrderSummary struct {
	ID        string  `db:"id" json:"id"`
	Status    string  `db:"status" json:"status"`
	Total     float64 `db:"total" json:"totalAmount"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
}

// Create inserts the order header, its items, and the initial history row in
// one transaction.
func (r *OrderRepo) Create(o *domain.Order, initial domain.StatusEntry) error {
	factors, err := json.Marshal(o.Risk.RiskFactors)
	if err != nil {
		return err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, user_id, status, total, shipping_method, risk_score, risk_level, risk_factors_json, requires_review, created_at)
	  VALUES
	    (?,  ?,       ?,      ?,     ?,               ?,          ?,          ?,                 ?,               ?)
	`, o.ID, o.UserID, string(o.Status), o.TotalAmount, o.ShippingMethod,
		o.Risk.RiskScore, string(o.Risk.RiskLevel), string(factors), o.Risk.RequiresReview, o.CreatedAt); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, qty, unit_price, reserved)
		  VALUES(?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Reserved); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
	  INSERT INTO order_status_history(order_id, status, actor, comment, created_at)
	  VALUES(?, ?, ?, ?, ?)
	`, o.ID, string(initial.Status), initial.Actor, initial.Comment, initial.Timestamp); err != nil {
		return err
	}

	return tx.Commit()
}

// Get loads the order header, items and full status history. Missing orders
// surface as sql.ErrNoRows.
func (r *OrderRepo) Get(orderID string) (domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `
		SELECT id, user_id, status, total, shipping_method, risk_score, risk_level,
		       risk_factors_json, requires_review,
		       COALESCE(cancel_reason,'') AS cancel_reason,
		       COALESCE(cancelled_at,'')  AS cancelled_at,
		       created_at
		FROM orders WHERE id = ?
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	var items []domain.OrderItem
	if err := r.db.Select(&items, `
		SELECT oi.product_id, p.name, oi.qty, oi.unit_price, oi.reserved
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.name
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	var history []domain.StatusEntry
	if err := r.db.Select(&history, `
		SELECT status, actor, COALESCE(comment,'') AS comment, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id
	`, orderID); err != nil {
		return domain.Order{}, err
	}

	var factors []string
	if err := json.Unmarshal([]byte(row.RiskFactors), &factors); err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:             row.ID,
		UserID:         row.UserID,
		Status:         domain.OrderStatus(row.Status),
		TotalAmount:    row.Total,
		ShippingMethod: row.ShippingMethod,
		Items:          items,
		StatusHistory:  history,
		Risk: domain.RiskAssessment{
			RiskScore:      row.RiskScore,
			RiskLevel:      domain.RiskLevel(row.RiskLevel),
			RiskFactors:    factors,
			RequiresReview: row.RequiresReview,
		},
		CancelReason: row.CancelReason,
		CancelledAt:  row.CancelledAt,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// UpdateStatus writes the new status and appends its history row in one
// transaction, so a status value never exists without its history entry.
func (r *OrderRepo) UpdateStatus(orderID string, status domain.OrderStatus, entry domain.StatusEntry) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
	  INSERT INTO order_status_history(order_id, status, actor, comment, created_at)
	  VALUES(?, ?, ?, ?, ?)
	`, orderID, string(entry.Status), entry.Actor, entry.Comment, entry.Timestamp); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) SetCancelled(orderID, reason, cancelledAt string) error {
	_, err := r.db.Exec(`
		UPDATE orders SET cancel_reason = ?, cancelled_at = ? WHERE id = ?
	`, reason, cancelledAt, orderID)
	return err
}

// CountByUser feeds the fraud scorer's priorOrderCount input.
func (r *OrderRepo) CountByUser(userID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID)
	return n, err
}

func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, status, total, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out, `
		SELECT id, status, total, created_at
		FROM orders
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, limit)
	return out, err
}
