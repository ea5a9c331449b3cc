package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"stellar/internal/kvstore"
	"stellar/internal/services"
)

func TestOrderGuard_SerializesPerOrder(t *testing.T) {
	ctx := context.Background()
	g := services.NewOrderGuard(kvstore.NewMemory(nil), time.Minute)

	if err := g.Acquire(ctx, "o-1"); err != nil {
		t.Fatal(err)
	}
	if err := g.Acquire(ctx, "o-1"); !errors.Is(err, services.ErrOrderBusy) {
		t.Fatalf("want ErrOrderBusy, got %v", err)
	}
	// a different order is unaffected
	if err := g.Acquire(ctx, "o-2"); err != nil {
		t.Fatal(err)
	}

	held, err := g.Held(ctx, "o-1")
	if err != nil || !held {
		t.Fatalf("want held, got %v %v", held, err)
	}

	g.Release(ctx, "o-1")
	if err := g.Acquire(ctx, "o-1"); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}

// An abandoned hold expires after the TTL instead of wedging the order.
func TestOrderGuard_TTLUnwedges(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := kvstore.NewMemory(func() time.Time { return now })
	g := services.NewOrderGuard(mem, 10*time.Second)

	if err := g.Acquire(ctx, "o-1"); err != nil {
		t.Fatal(err)
	}
	if err := g.Acquire(ctx, "o-1"); !errors.Is(err, services.ErrOrderBusy) {
		t.Fatalf("want ErrOrderBusy, got %v", err)
	}

	now = now.Add(11 * time.Second)
	if err := g.Acquire(ctx, "o-1"); err != nil {
		t.Fatalf("expired hold should be reclaimable: %v", err)
	}
}
