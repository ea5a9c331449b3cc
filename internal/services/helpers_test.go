package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"stellar/internal/kvstore"
	"stellar/internal/repos"
	"stellar/internal/services"
)

// memdb opens an in-memory sqlite with the order/inventory schema. A single
// connection keeps :memory: shared across the test's goroutines.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT, description TEXT, price NUMERIC,
	  stock_quantity INTEGER NOT NULL DEFAULT 0, track_inventory INTEGER NOT NULL DEFAULT 1,
	  allow_backorder INTEGER NOT NULL DEFAULT 0, active INTEGER NOT NULL DEFAULT 1,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'pending',
	  total NUMERIC NOT NULL, shipping_method TEXT NOT NULL DEFAULT 'standard',
	  risk_score INTEGER NOT NULL DEFAULT 0, risk_level TEXT NOT NULL DEFAULT 'low',
	  risk_factors_json TEXT NOT NULL DEFAULT '[]', requires_review INTEGER NOT NULL DEFAULT 0,
	  cancel_reason TEXT, cancelled_at TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE order_items(order_id TEXT, product_id TEXT, qty INTEGER, unit_price NUMERIC,
	  reserved INTEGER NOT NULL DEFAULT 0, PRIMARY KEY(order_id, product_id));
	CREATE TABLE order_status_history(id INTEGER PRIMARY KEY AUTOINCREMENT, order_id TEXT NOT NULL,
	  status TEXT NOT NULL, actor TEXT NOT NULL, comment TEXT, created_at TEXT NOT NULL);

	INSERT INTO products(id,name,price,stock_quantity,track_inventory,allow_backorder) VALUES
	  ('111','Refractor Telescope 70mm',249.00,5,1,0),
	  ('222','Plossl Eyepiece 10mm',39.50,20,1,0),
	  ('333','Moon Filter',18.00,3,1,1),
	  ('chart','Star Chart (digital)',4.99,0,0,0);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func qtyOf(t *testing.T, db *sqlx.DB, productID string) int {
	t.Helper()
	var qty int
	if err := db.Get(&qty, `SELECT stock_quantity FROM products WHERE id = ?`, productID); err != nil {
		t.Fatal(err)
	}
	return qty
}

// harness wires the full service stack over one memdb with a fixed clock
// and an approving gateway; tests override gateway behavior as needed.
type harness struct {
	db      *sqlx.DB
	ledger  *services.StockLedger
	rsv     *services.ReservationService
	orders  *services.OrderService
	gateway *services.StubGateway
	clock   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	ledger := services.NewStockLedger(prodRepo)
	rsv := services.NewReservationService(prodRepo, ledger)
	gw := &services.StubGateway{}
	guard := services.NewOrderGuard(kvstore.NewMemory(nil), time.Minute)

	h := &harness{
		db:      db,
		ledger:  ledger,
		rsv:     rsv,
		gateway: gw,
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.orders = services.NewOrderService(prodRepo, orderRepo, rsv, services.NewFraudService(), gw, guard, func() time.Time {
		h.clock = h.clock.Add(time.Second)
		return h.clock
	})
	return h
}
