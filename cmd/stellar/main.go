package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"stellar/internal/config"
	"stellar/internal/http/handlers"
	"stellar/internal/kvstore"
	applog "stellar/internal/log"
	"stellar/internal/repos"
	"stellar/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Counter store: redis when configured, in-process otherwise
	var store kvstore.Store
	if cfg.RedisAddr != "" {
		r := kvstore.NewRedis(cfg.RedisAddr)
		if err := r.Ping(context.Background()); err != nil {
			log.Fatalf("redis at %s: %v", cfg.RedisAddr, err)
		}
		store = r
	} else {
		mem := kvstore.NewMemory(time.Now)
		go mem.Janitor(context.Background(), time.Minute)
		store = mem
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- Routes ----------
	deps := handlers.NewDeps(db, store, &services.StubGateway{}, authSvc)

	api := app.Group("/api/v1")

	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.InventoryHandler.Check)

	// Auth (login throttled)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts"})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/logout", deps.AuthHandler.Logout)

	// Orders
	api.Post("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.Create)
	api.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)
	api.Get("/orders/:id", handlers.RequireUser(authSvc), deps.OrderHandler.Get)
	api.Post("/orders/:id/payment", handlers.RequireUser(authSvc), deps.OrderHandler.Pay)
	api.Post("/orders/:id/cancel", handlers.RequireUser(authSvc), deps.OrderHandler.Cancel)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.OrderHandler.AdminList)
	admin.Post("/orders/:id/status", deps.OrderHandler.AdminUpdateStatus)
	admin.Post("/inventory", deps.InventoryHandler.AdminAdjust)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
