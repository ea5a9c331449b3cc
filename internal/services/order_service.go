package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"stellar/internal/domain"
	applog "stellar/internal/log"
	"stellar/internal/repos"
	"stellar/internal/validate"
)

// Clock supplies timestamps for status history and cancellation marks;
// injected so tests control time.
type Clock func() time.Time

var ErrPaymentDeclined = errors.New("payment declined")

type OrderService struct {
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Rsv      *ReservationService
	Fraud    *FraudService
	Gateway  PaymentGateway
	Guard    *OrderGuard
	Now      Clock
}

func NewOrderService(products *repos.ProductRepo, orders *repos.OrderRepo, rsv *ReservationService,
	fraud *FraudService, gw PaymentGateway, guard *OrderGuard, now Clock) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{Products: products, Orders: orders, Rsv: rsv, Fraud: fraud, Gateway: gw, Guard: guard, Now: now}
}

func (s *OrderService) stamp() string { return s.Now().UTC().Format(time.RFC3339) }

type PlaceInput struct {
	UserID                       string
	Items                        []domain.OrderItem // ProductID + Quantity; the service prices them
	ShippingMethod               string
	BillingAddressSameAsShipping bool
}

// Place creates an order: price the items, score the risk, reserve stock,
// persist as pending. The risk assessment is attached once here and never
// recomputed. If persisting fails after the reservation succeeded, the
// reservation is released before the error returns.
func (s *OrderService) Place(in PlaceInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, &domain.ValidationError{Field: "items", Reason: "order has no items"}
	}
	for _, it := range in.Items {
		if _, ok := validate.ID(it.ProductID); !ok {
			return domain.Order{}, &domain.ValidationError{Field: "productId", Reason: "malformed id"}
		}
		if !validate.Qty(it.Quantity) {
			return domain.Order{}, &domain.ValidationError{Field: "quantity", Reason: "must be between 1 and 100"}
		}
	}
	method, ok := validate.ShippingMethod(in.ShippingMethod)
	if !ok {
		return domain.Order{}, &domain.ValidationError{Field: "shippingMethod", Reason: "unknown method"}
	}

	items, total, err := s.priceItems(in.Items)
	if err != nil {
		return domain.Order{}, err
	}

	prior, err := s.Orders.CountByUser(in.UserID)
	if err != nil {
		return domain.Order{}, err
	}
	risk := s.Fraud.CheckFraudRisk(FraudInput{
		TotalAmount:                  total,
		PriorOrderCount:              prior,
		BillingAddressSameAsShipping: in.BillingAddressSameAsShipping,
		ShippingMethod:               method,
	})

	lines, err := s.Rsv.ReserveInventory(items)
	if err != nil {
		return domain.Order{}, err
	}
	reservedByProduct := make(map[string]int, len(lines))
	for _, ln := range lines {
		reservedByProduct[ln.ProductID] = ln.Quantity
	}
	for i := range items {
		items[i].Reserved = reservedByProduct[items[i].ProductID]
	}

	now := s.stamp()
	order := domain.Order{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		Status:         domain.StatusPending,
		TotalAmount:    total,
		ShippingMethod: method,
		Items:          items,
		Risk:           risk,
		CreatedAt:      now,
	}
	initial := domain.StatusEntry{Status: domain.StatusPending, Timestamp: now, Actor: in.UserID, Comment: "order created"}

	if err := s.Orders.Create(&order, initial); err != nil {
		s.Rsv.ReleaseInventory(lines)
		return domain.Order{}, err
	}
	order.StatusHistory = []domain.StatusEntry{initial}

	applog.OpInfo("order.place", map[string]any{
		"order_id": order.ID, "user_id": in.UserID, "total": total,
		"risk_score": risk.RiskScore, "risk_level": string(risk.RiskLevel),
	})
	return order, nil
}

func (s *OrderService) priceItems(in []domain.OrderItem) ([]domain.OrderItem, float64, error) {
	items := make([]domain.OrderItem, 0, len(in))
	total := 0.0
	for _, it := range in {
		p, err := s.Products.FindByID(it.ProductID)
		if err != nil {
			return nil, 0, &domain.ProductNotFoundError{ProductID: it.ProductID}
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
		total += p.Price * float64(it.Quantity)
	}
	return items, total, nil
}

func (s *OrderService) Get(orderID string) (domain.Order, error) {
	return s.Orders.Get(orderID)
}

// ProcessPayment runs the gateway for a pending order. Approval moves the
// order to processing; a decline releases the reserved stock and cancels it.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID string) (domain.Order, error) {
	if err := s.Guard.Acquire(ctx, orderID); err != nil {
		return domain.Order{}, err
	}
	defer s.Guard.Release(ctx, orderID)

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status != domain.StatusPending {
		return domain.Order{}, &domain.InvalidTransitionError{Current: o.Status, Allowed: domain.AllowedNext(o.Status)}
	}

	res, err := s.Gateway.Process(PaymentDetails{OrderID: o.ID, Amount: o.TotalAmount})
	if err != nil {
		return domain.Order{}, err
	}
	if !res.Approved {
		s.Rsv.ReleaseInventory(LinesForItems(o.Items))
		if err := s.applyStatus(&o, domain.StatusCancelled, "system", "payment declined"); err != nil {
			return domain.Order{}, err
		}
		if err := s.Orders.SetCancelled(o.ID, "payment declined", s.stamp()); err != nil {
			applog.OpError("order.cancel.mark.fail", err, map[string]any{"order_id": o.ID})
		}
		applog.OpInfo("order.payment.declined", map[string]any{"order_id": o.ID, "tx": res.TransactionID})
		return o, ErrPaymentDeclined
	}

	if err := s.applyStatus(&o, domain.StatusProcessing, "system", "payment "+res.TransactionID); err != nil {
		return domain.Order{}, err
	}
	applog.OpInfo("order.payment.approved", map[string]any{"order_id": o.ID, "tx": res.TransactionID})
	return o, nil
}

// UpdateStatus validates the transition against the lifecycle table and
// appends exactly one history entry on success.
func (s *OrderService) UpdateStatus(orderID string, next domain.OrderStatus, actor, comment string) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.applyStatus(&o, next, actor, comment); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (s *OrderService) applyStatus(o *domain.Order, next domain.OrderStatus, actor, comment string) error {
	if !domain.CanTransition(o.Status, next) {
		return &domain.InvalidTransitionError{Current: o.Status, Allowed: domain.AllowedNext(o.Status)}
	}
	entry := domain.StatusEntry{Status: next, Timestamp: s.stamp(), Actor: actor, Comment: comment}
	if err := s.Orders.UpdateStatus(o.ID, next, entry); err != nil {
		return err
	}
	o.Status = next
	o.StatusHistory = append(o.StatusHistory, entry)
	return nil
}

// CancelOrder cancels a pending or processing order on behalf of its owner,
// returning reserved stock first. Nothing is mutated when the caller is not
// the owner or the order has advanced past cancellable states.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, requestingUserID, reason string) error {
	if err := s.Guard.Acquire(ctx, orderID); err != nil {
		return err
	}
	defer s.Guard.Release(ctx, orderID)

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if o.UserID != requestingUserID {
		return domain.ErrUnauthorized
	}
	if !domain.CanTransition(o.Status, domain.StatusCancelled) {
		return &domain.InvalidTransitionError{Current: o.Status, Allowed: domain.AllowedNext(o.Status)}
	}

	if reason == "" {
		reason = "cancelled by customer"
	}

	s.Rsv.ReleaseInventory(LinesForItems(o.Items))
	if err := s.applyStatus(&o, domain.StatusCancelled, requestingUserID, reason); err != nil {
		return err
	}
	if err := s.Orders.SetCancelled(o.ID, reason, s.stamp()); err != nil {
		return err
	}
	applog.OpInfo("order.cancel", map[string]any{"order_id": o.ID, "user_id": requestingUserID})
	return nil
}
