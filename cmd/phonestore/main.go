package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"phonestore/internal/catalogapi"
	"phonestore/internal/config"
	"phonestore/internal/http/handlers"
	applog "phonestore/internal/log"
	"phonestore/internal/metrics"
	"phonestore/internal/repos"
	"phonestore/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

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

	// The phones table lives in SQLite, so the DB is needed for the local
	// catalog even when carts go to another backend.
	var db *sqlx.DB
	if cfg.StoreBackend == config.BackendSQLite || cfg.CatalogSource == config.CatalogLocal {
		db, err = repos.OpenDB(cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
	}

	store, closeStore, err := openStore(cfg, db)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	var phones services.PhoneProvider
	switch cfg.CatalogSource {
	case config.CatalogAPI:
		phones = catalogapi.New(catalogapi.Config{
			BaseURL: cfg.CatalogAPIURL,
			APIKey:  cfg.CatalogAPIKey,
			Timeout: cfg.CatalogTimeout,
		})
		log.Printf("[catalog] remote %s", cfg.CatalogAPIURL)
	default:
		phones = repos.NewPhoneRepo(db)
		log.Printf("[catalog] local sqlite %s", cfg.DBDSN)
	}

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
			}
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(metrics.HTTP())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || p == "/metrics" || p == "/healthz"
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		// The JSON API only accepts application/json, which a cross-site form cannot send.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			formTok := c.FormValue("csrf")
			applog.Security(c, "csrf.fail", map[string]any{"form": formTok})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	log.Printf("[static] /static -> ./web/static")
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(phones, store, cfg)

	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/phones") })
	app.Get("/phones", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.PhoneHandler.List)
	app.Get("/phones/:id", deps.PhoneHandler.Detail)

	// Cart
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	// API
	api := app.Group("/api/v1")
	cartLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|cart"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.cart.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/phones", deps.APIHandler.Phones)
	api.Get("/phones/:id", deps.APIHandler.Phone)
	api.Get("/cart", deps.APIHandler.Cart)
	api.Post("/cart/items", cartLimiter, deps.APIHandler.AddItem)
	api.Delete("/cart/items", cartLimiter, deps.APIHandler.RemoveItem)
	api.Delete("/cart", cartLimiter, deps.APIHandler.ClearCart)

	// Health, metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

// openStore picks the cart backend named by STORE_BACKEND.
func openStore(cfg config.Config, db *sqlx.DB) (repos.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Printf("[store] redis %s ttl=%s", cfg.RedisAddr, cfg.CartTTL())
		return repos.NewRedisKV(client, cfg.CartTTL()), func() { _ = client.Close() }, nil
	case config.BackendMemory:
		log.Printf("[store] memory (carts are lost on restart)")
		return repos.NewMemoryKV(), func() {}, nil
	default:
		log.Printf("[store] sqlite %s", cfg.DBDSN)
		return repos.NewSQLiteKV(db), func() {}, nil
	}
}
