package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stellar/internal/log"
	"stellar/internal/services"
	"stellar/internal/validate"
)

type InventoryHandler struct {
	Inv    *services.InventoryService
	Ledger *services.StockLedger
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}

	avail, err := h.Inv.CheckAvailability(productID)
	if err != nil {
		return respondErr(c, "availability.check", err)
	}
	return c.JSON(avail)
}

// AdminAdjust applies a signed stock delta through the ledger.
func (h *InventoryHandler) AdminAdjust(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"productId"`
		Delta     int    `json:"delta"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if _, ok := validate.ID(body.ProductID); !ok || body.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	p, err := h.Ledger.AdjustStock(body.ProductID, body.Delta)
	if err != nil {
		applog.Error(c, "admin.inventory.adjust.fail", err, map[string]any{"product_id": body.ProductID, "delta": body.Delta})
		return respondErr(c, "admin.inventory.adjust", err)
	}
	applog.Audit(c, "admin.inventory.adjust", map[string]any{"product_id": p.ID, "delta": body.Delta, "qty": p.StockQuantity})
	return c.JSON(fiber.Map{"productId": p.ID, "stockQuantity": p.StockQuantity})
}
