// Package routes wires the HTTP surface onto the handlers.
package routes

import (
	"kopa/internal/handlers"
	"kopa/internal/middleware"
	"kopa/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Wallet      *handlers.WalletHandler
	Ledger      *handlers.LedgerHandler
	Transaction *handlers.TransactionHandler
	Categorize  *handlers.CategorizeHandler
	Report      *handlers.ReportHandler
}

func Setup(app *fiber.App, h Handlers) {
	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Auth endpoints get their own rate limit.
	authLimiter := limiter.New(limiter.Config{Max: 10})
	api.Post("/auth/register", authLimiter, h.Auth.Register)
	api.Post("/auth/login", authLimiter, h.Auth.Login)

	authenticated := api.Group("/", middleware.Auth())

	// Static segment before the :id capture.
	authenticated.Get("/wallet/transactions", h.Transaction.List)
	authenticated.Get("/wallet/:id", h.Wallet.GetWallet)
	authenticated.Post("/wallet/reload", h.Ledger.Reload)

	authenticated.Post("/payments/pay", h.Ledger.Pay)
	authenticated.Post("/payments/transfer", h.Ledger.Transfer)

	authenticated.Post("/categorize", h.Categorize.Preview)
	authenticated.Get("/transactions/:id", h.Transaction.Get)
	authenticated.Patch("/transactions/:id/category", h.Transaction.OverrideCategory)

	authenticated.Post("/reports/monthly", h.Report.Monthly)
	authenticated.Get("/reports/monthly", h.Report.Get)
	authenticated.Get("/reports/:id/download", h.Report.Download)

	authenticated.Get("/lookup/wallet", h.Wallet.Lookup)

	// Admin-only mirror of the unscoped transaction feed.
	admin := authenticated.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/transactions", h.Transaction.List)
}
