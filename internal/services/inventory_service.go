package services

import (
	"database/sql"
	"errors"

	"stellar/internal/domain"
	"stellar/internal/repos"
)

type InventoryService struct {
	Products *repos.ProductRepo
}

func NewInventoryService(products *repos.ProductRepo) *InventoryService {
	return &InventoryService{Products: products}
}

// CheckAvailability converts stock state to IN_STOCK / LOW_STOCK /
// OUT_OF_STOCK / BACKORDER for the storefront.
func (s *InventoryService) CheckAvailability(productID string) (domain.Availability, error) {
	p, err := s.Products.FindByID(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	if !p.TrackInventory {
		return domain.Availability{Status: "IN_STOCK", Qty: p.StockQuantity}, nil
	}

	status := "OUT_OF_STOCK"
	switch {
	case p.StockQuantity >= 5:
		status = "IN_STOCK"
	case p.StockQuantity > 0:
		status = "LOW_STOCK"
	case p.AllowBackorder:
		status = "BACKORDER"
	}
	return domain.Availability{Status: status, Qty: p.StockQuantity}, nil
}
