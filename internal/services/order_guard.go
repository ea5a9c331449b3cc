package services

import (
	"context"
	"errors"
	"time"

	"stellar/internal/kvstore"
	applog "stellar/internal/log"
)

var ErrOrderBusy = errors.New("another operation on this order is in progress")

// OrderGuard serializes mutating operations per order so a cancellation can
// never interleave with a release or payment step on the same order. The TTL
// bounds leakage if a holder dies without releasing.
type OrderGuard struct {
	Store kvstore.Store
	TTL   time.Duration
}

func NewOrderGuard(store kvstore.Store, ttl time.Duration) *OrderGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &OrderGuard{Store: store, TTL: ttl}
}

func (g *OrderGuard) key(orderID string) string { return "order-op:" + orderID }

// Acquire takes the per-order slot. ErrOrderBusy means some other operation
// holds it; the caller should retry later rather than proceed.
func (g *OrderGuard) Acquire(ctx context.Context, orderID string) error {
	n, err := g.Store.Incr(ctx, g.key(orderID))
	if err != nil {
		return err
	}
	if n > 1 {
		if _, derr := g.Store.Decr(ctx, g.key(orderID)); derr != nil {
			applog.OpError("order.guard.decr.fail", derr, map[string]any{"order_id": orderID})
		}
		return ErrOrderBusy
	}
	return g.Store.Expire(ctx, g.key(orderID), g.TTL)
}

func (g *OrderGuard) Release(ctx context.Context, orderID string) {
	if _, err := g.Store.Decr(ctx, g.key(orderID)); err != nil {
		applog.OpError("order.guard.release.fail", err, map[string]any{"order_id": orderID})
	}
}

// Held reports whether an operation currently holds the order's slot.
func (g *OrderGuard) Held(ctx context.Context, orderID string) (bool, error) {
	n, ok, err := g.Store.Get(ctx, g.key(orderID))
	if err != nil {
		return false, err
	}
	return ok && n > 0, nil
}
