package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"stellar/internal/domain"
	applog "stellar/internal/log"
	"stellar/internal/services"
)

// respondErr maps domain errors to HTTP statuses. Error payloads carry the
// same fields the domain errors do so API clients can act on them.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var notFound *domain.ProductNotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(), "productId": notFound.ProductID,
		})
	}
	var short *domain.InsufficientStockError
	if errors.As(err, &short) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "productId": short.ProductID, "available": short.Available,
		})
	}
	var badMove *domain.InvalidTransitionError
	if errors.As(err, &badMove) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "currentStatus": badMove.Current, "allowed": badMove.Allowed,
		})
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		applog.Security(c, action+".denied", nil)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, services.ErrOrderBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentDeclined):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
