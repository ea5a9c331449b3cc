package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stellar/internal/domain"
	applog "stellar/internal/log"
	"stellar/internal/repos"
	"stellar/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
	Repo  *repos.OrderRepo
}

type orderItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderReq struct {
	Items                        []orderItemReq `json:"items"`
	ShippingMethod               string         `json:"shippingMethod"`
	BillingAddressSameAsShipping *bool          `json:"billingAddressSameAsShipping"`
}

// Create places an order for the logged-in user.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}

	var body createOrderReq
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	items := make([]domain.OrderItem, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sameAddr := true
	if body.BillingAddressSameAsShipping != nil {
		sameAddr = *body.BillingAddressSameAsShipping
	}

	order, err := h.Order.Place(services.PlaceInput{
		UserID:                       u.ID,
		Items:                        items,
		ShippingMethod:               body.ShippingMethod,
		BillingAddressSameAsShipping: sameAddr,
	})
	if err != nil {
		applog.Security(c, "order.place.fail", map[string]any{"user_id": u.ID, "error": err.Error()})
		return respondErr(c, "order.place", err)
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id": order.ID, "total": order.TotalAmount, "risk_level": string(order.Risk.RiskLevel),
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

// Get returns one order; owners and admins only.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	o, err := h.Order.Get(c.Params("id"))
	if err != nil {
		return respondErr(c, "order.get", err)
	}
	if u == nil || (u.ID != o.UserID && u.Role != "ADMIN") {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": o.ID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(o)
}

// History lists the current user's orders.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		return respondErr(c, "order.history", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// Pay runs the payment step for a pending order.
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	oid := c.Params("id")
	if u != nil {
		if o, err := h.Order.Get(oid); err == nil && o.UserID != u.ID && u.Role != "ADMIN" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
	}
	order, err := h.Order.ProcessPayment(c.UserContext(), oid)
	if err != nil {
		return respondErr(c, "order.pay", err)
	}
	applog.Audit(c, "order.pay", map[string]any{"order_id": order.ID})
	return c.JSON(order)
}

// Cancel cancels the caller's own order.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)

	oid := c.Params("id")
	if err := h.Order.CancelOrder(c.UserContext(), oid, u.ID, body.Reason); err != nil {
		return respondErr(c, "order.cancel", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": oid, "user_id": u.ID})
	return c.JSON(fiber.Map{"ok": true})
}

// AdminUpdateStatus applies a state-machine-validated transition.
func (h *OrderHandler) AdminUpdateStatus(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	var body struct {
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&body); err != nil || !domain.ValidStatus(body.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}

	actor := "admin"
	if u != nil {
		actor = u.ID
	}
	order, err := h.Order.UpdateStatus(c.Params("id"), domain.OrderStatus(body.Status), actor, body.Comment)
	if err != nil {
		return respondErr(c, "admin.orders.update", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": order.ID, "status": body.Status})
	return c.JSON(order)
}

// AdminList shows the latest orders.
func (h *OrderHandler) AdminList(c *fiber.Ctx) error {
	orders, err := h.Repo.ListLatest(100)
	if err != nil {
		return respondErr(c, "admin.orders.list", err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}
