// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers together and applies
// the authentication and authorization middleware.
package routes

import (
	"khqrpos/internal/config"
	"khqrpos/internal/gateway/bakong"
	"khqrpos/internal/handlers"
	"khqrpos/internal/middleware"
	"khqrpos/internal/repositories"
	"khqrpos/internal/services/auth"
	"khqrpos/internal/services/khqr"
	"khqrpos/internal/services/merchant"
	"khqrpos/internal/services/notification"
	"khqrpos/internal/services/qr"
	"khqrpos/internal/services/user"
	"khqrpos/internal/services/verification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantAccountRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	profileRepo := repositories.NewProfileRepository(db)

	// Services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	merchantService := merchant.NewService(merchantRepo, repositories.CacheService)

	encoder := khqr.NewEncoder()
	qrService := qr.NewService(merchantService, txRepo, encoder)

	gatewayClient := bakong.NewClient(config.GetEnv("BAKONG_API_URL", ""))
	notifier := notification.NewService(
		notification.NewTelegramSender(config.GetEnv("TELEGRAM_API_URL", "")),
	)
	verifier := verification.NewService(txRepo, merchantService, gatewayClient, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	merchantHandler := handlers.NewMerchantAccountHandler(merchantService)
	bakongHandler := handlers.NewBakongHandler(qrService, verifier, merchantService)
	txHandler := handlers.NewTransactionHandler(txRepo)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/refresh", authHandler.RefreshToken)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	// KHQR issuance and settlement verification
	bakongGroup := protected.Group("/bakong")
	bakongGroup.Get("/token", bakongHandler.GetToken)
	bakongGroup.Put("/token", middleware.AdminOnly, bakongHandler.UpdateToken)
	bakongGroup.Delete("/token", middleware.AdminOnly, bakongHandler.DeleteToken)
	bakongGroup.Post("/generate-qr", bakongHandler.GenerateQR)
	bakongGroup.Get("/verify/md5", bakongHandler.VerifyLatest)
	bakongGroup.Get("/verify/bill/:billNumber", bakongHandler.VerifyByBill)

	protected.Get("/transactions", txHandler.List)

	// Merchant account directory
	merchants := protected.Group("/merchant-accounts")
	merchants.Post("/", merchantHandler.Create)
	merchants.Get("/", merchantHandler.List)
	merchants.Get("/:id", merchantHandler.Get)
	merchants.Put("/:id", merchantHandler.Update)
	merchants.Delete("/:id", merchantHandler.Delete)

	// Admin-only user management. AdminOnly is applied per route so the
	// profile endpoints below stay reachable by their owners.
	users := protected.Group("/users")
	users.Get("/", middleware.AdminOnly, userHandler.List)
	users.Post("/", middleware.AdminOnly, userHandler.Create)
	users.Get("/:id", middleware.AdminOnly, userHandler.Get)
	users.Put("/:id", middleware.AdminOnly, userHandler.Update)
	users.Delete("/:id", middleware.AdminOnly, userHandler.Delete)

	// Profiles are owner-or-admin, enforced inside the handler
	users.Get("/:id/profile", profileHandler.Get)
	users.Put("/:id/profile", profileHandler.Upsert)
	users.Delete("/:id/profile", profileHandler.Delete)
}
