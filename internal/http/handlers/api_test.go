package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"stellar/internal/http/handlers"
	"stellar/internal/kvstore"
	"stellar/internal/repos"
	"stellar/internal/services"
)

func testApp(t *testing.T) (*fiber.App, *sqlx.DB) {
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
	CREATE TABLE users(id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, name TEXT NOT NULL,
	  password_hash TEXT NOT NULL, role TEXT NOT NULL);
	CREATE TABLE sessions(id TEXT PRIMARY KEY, user_id TEXT, created_at TEXT, last_seen TEXT);

	INSERT INTO products(id,name,price,stock_quantity) VALUES ('scope-1','Travel Scope',129.99,5);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if _, err := db.Exec(`INSERT INTO users(id,email,name,password_hash,role) VALUES
	  ('u-test','test@stellar.test','Tester',?,'USER')`, string(hash)); err != nil {
		t.Fatal(err)
	}

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	deps := handlers.NewDeps(db, kvstore.NewMemory(nil), &services.StubGateway{}, authSvc)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/availability", deps.InventoryHandler.Check)
	api.Post("/auth/login", deps.AuthHandler.Login)
	api.Post("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.Create)
	api.Get("/orders/:id", handlers.RequireUser(authSvc), deps.OrderHandler.Get)
	api.Post("/orders/:id/cancel", handlers.RequireUser(authSvc), deps.OrderHandler.Cancel)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, sid string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req, int(5*time.Second/time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, "POST", "/api/v1/auth/login", map[string]string{
		"email": "test@stellar.test", "password": "Passw0rd!",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" && ck.Value != "" {
			return ck.Value
		}
	}
	t.Fatal("no sid cookie issued")
	return ""
}

func TestAPI_OrderLifecycle(t *testing.T) {
	app, db := testApp(t)
	sid := login(t, app)

	// unauthenticated create is rejected
	if resp := doJSON(t, app, "POST", "/api/v1/orders", map[string]any{}, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}

	resp := doJSON(t, app, "POST", "/api/v1/orders", map[string]any{
		"items":          []map[string]any{{"productId": "scope-1", "quantity": 2}},
		"shippingMethod": "standard",
	}, sid)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: want 201, got %d", resp.StatusCode)
	}
	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		t.Fatal(err)
	}
	if order.Status != "pending" || order.ID == "" {
		t.Fatalf("bad order: %+v", order)
	}

	var qty int
	if err := db.Get(&qty, `SELECT stock_quantity FROM products WHERE id='scope-1'`); err != nil {
		t.Fatal(err)
	}
	if qty != 3 {
		t.Fatalf("want qty=3 after reserve, got %d", qty)
	}

	// fetch it back
	if resp := doJSON(t, app, "GET", "/api/v1/orders/"+order.ID, nil, sid); resp.StatusCode != http.StatusOK {
		t.Fatalf("get: want 200, got %d", resp.StatusCode)
	}

	// cancel restores stock
	if resp := doJSON(t, app, "POST", "/api/v1/orders/"+order.ID+"/cancel", map[string]string{"reason": "test"}, sid); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: want 200, got %d", resp.StatusCode)
	}
	if err := db.Get(&qty, `SELECT stock_quantity FROM products WHERE id='scope-1'`); err != nil {
		t.Fatal(err)
	}
	if qty != 5 {
		t.Fatalf("want qty=5 after cancel, got %d", qty)
	}
}

func TestAPI_InsufficientStockConflict(t *testing.T) {
	app, _ := testApp(t)
	sid := login(t, app)

	resp := doJSON(t, app, "POST", "/api/v1/orders", map[string]any{
		"items": []map[string]any{{"productId": "scope-1", "quantity": 10}},
	}, sid)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("want 409, got %d", resp.StatusCode)
	}
	var body struct {
		Available int    `json:"available"`
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Available != 5 || body.ProductID != "scope-1" {
		t.Fatalf("error payload wrong: %+v", body)
	}
}

func TestAPI_Availability(t *testing.T) {
	app, _ := testApp(t)

	resp := doJSON(t, app, "GET", "/api/v1/availability?productId=scope-1", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var a struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if a.Status != "IN_STOCK" || a.Qty != 5 {
		t.Fatalf("bad availability: %+v", a)
	}
}
