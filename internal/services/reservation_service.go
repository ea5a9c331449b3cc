package services

import (
	"database/sql"
	"errors"

	"stellar/internal/domain"
	applog "stellar/internal/log"
	"stellar/internal/repos"
)

// ReservationService reserves and releases stock for order items. Items are
// processed strictly in order; when any item fails, every line reserved so
// far is compensated in reverse before the error surfaces, so the caller
// never sees an error alongside stock it still holds.
type ReservationService struct {
	Products *repos.ProductRepo
	Ledger   *StockLedger
}

func NewReservationService(products *repos.ProductRepo, ledger *StockLedger) *ReservationService {
	return &ReservationService{Products: products, Ledger: ledger}
}

// ReserveInventory decrements stock for each item and returns one line per
// actual decrement. Products that do not track inventory produce no line.
// When backorders are allowed and on-hand stock only partially covers the
// quantity, the on-hand part is reserved and the remainder is backordered.
func (s *ReservationService) ReserveInventory(items []domain.OrderItem) ([]domain.ReservationLine, error) {
	reserved := make([]domain.ReservationLine, 0, len(items))

	for _, it := range items {
		p, err := s.Products.FindByID(it.ProductID)
		if err != nil {
			s.rollback(reserved)
			if errors.Is(err, sql.ErrNoRows) {
				return nil, &domain.ProductNotFoundError{ProductID: it.ProductID}
			}
			return nil, err
		}

		if !p.TrackInventory {
			continue
		}
		if p.StockQuantity < it.Quantity && !p.AllowBackorder {
			s.rollback(reserved)
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.StockQuantity,
			}
		}

		take := it.Quantity
		if take > p.StockQuantity {
			take = p.StockQuantity // rest is backordered
		}
		if take == 0 {
			continue
		}

		if _, err := s.Ledger.AdjustStock(it.ProductID, -take); err != nil {
			s.rollback(reserved)
			return nil, err
		}
		reserved = append(reserved, domain.ReservationLine{ProductID: it.ProductID, Quantity: take})
	}

	return reserved, nil
}

// ReleaseInventory returns reserved quantities to stock. It is best-effort:
// missing products and failed adjustments are logged and skipped, never
// raised, because release also runs as compensation after a partial failure
// and must not mask the error the caller actually needs.
func (s *ReservationService) ReleaseInventory(lines []domain.ReservationLine) {
	for _, ln := range lines {
		s.releaseLine(ln)
	}
}

func (s *ReservationService) releaseLine(ln domain.ReservationLine) {
	p, err := s.Products.FindByID(ln.ProductID)
	if err != nil {
		applog.OpError("inventory.release.skip", err, map[string]any{
			"product_id": ln.ProductID, "qty": ln.Quantity,
		})
		return
	}
	if !p.TrackInventory {
		return
	}
	if _, err := s.Ledger.AdjustStock(ln.ProductID, ln.Quantity); err != nil {
		applog.OpError("inventory.release.fail", err, map[string]any{
			"product_id": ln.ProductID, "qty": ln.Quantity,
		})
	}
}

// rollback compensates already-reserved lines in reverse order. Every line
// is attempted even if one fails.
func (s *ReservationService) rollback(reserved []domain.ReservationLine) {
	for i := len(reserved) - 1; i >= 0; i-- {
		s.releaseLine(reserved[i])
	}
	if len(reserved) > 0 {
		applog.OpInfo("inventory.reserve.rollback", map[string]any{"lines": len(reserved)})
	}
}

// LinesForItems maps persisted order items back to the reservation lines
// they produced, used when cancelling an order created earlier. Items that
// reserved nothing yield no line.
func LinesForItems(items []domain.OrderItem) []domain.ReservationLine {
	lines := make([]domain.ReservationLine, 0, len(items))
	for _, it := range items {
		if it.Reserved <= 0 {
			continue
		}
		lines = append(lines, domain.ReservationLine{ProductID: it.ProductID, Quantity: it.Reserved})
	}
	return lines
}
