package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"stellar/internal/kvstore"
	"stellar/internal/repos"
	"stellar/internal/services"
)

type Deps struct {
	OrderHandler     *OrderHandler
	InventoryHandler *InventoryHandler
	AuthHandler      *AuthHandler
}

func NewDeps(db *sqlx.DB, store kvstore.Store, gateway services.PaymentGateway, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	ledger := services.NewStockLedger(prodRepo)
	rsvSvc := services.NewReservationService(prodRepo, ledger)
	fraudSvc := services.NewFraudService()
	invSvc := services.NewInventoryService(prodRepo)
	guard := services.NewOrderGuard(store, 30*time.Second)
	orderSvc := services.NewOrderService(prodRepo, orderRepo, rsvSvc, fraudSvc, gateway, guard, time.Now)

	return &Deps{
		OrderHandler:     &OrderHandler{Order: orderSvc, Repo: orderRepo},
		InventoryHandler: &InventoryHandler{Inv: invSvc, Ledger: ledger},
		AuthHandler:      &AuthHandler{Auth: auth},
	}
}
