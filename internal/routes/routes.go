// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"fundmatch/internal/config"
	"fundmatch/internal/handlers"
	"fundmatch/internal/middleware"
	"fundmatch/internal/repositories"
	"fundmatch/internal/services/auth"
	"fundmatch/internal/services/ledger"
	"fundmatch/internal/services/messaging"
	"fundmatch/internal/services/purchase"
	"fundmatch/internal/services/quota"
	"fundmatch/internal/services/swipe"
	"fundmatch/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes and returns the
// messaging service so main can schedule the expiry sweep against the
// same instance the handlers use.
func SetupRoutes(app *fiber.App, db *gorm.DB, engineCfg config.EngineConfig) messaging.Service {
	// Repositories
	walletRepo := repositories.NewWalletRepository(db)
	userRepo := repositories.NewUserRepository(db)
	quotaRepo := repositories.NewQuotaRepository(db)
	swipeRepo := repositories.NewSwipeRepository(db)
	convRepo := repositories.NewConversationRepository(db)

	// Services, in dependency order
	authService := auth.NewService(userRepo)
	ledgerService := ledger.NewService(walletRepo, repositories.CacheService, nil)
	userService := user.NewService(userRepo, ledgerService)
	purchaseService := purchase.NewService(walletRepo, repositories.CacheService)
	quotaService := quota.NewService(quotaRepo, walletRepo, engineCfg)
	swipeService := swipe.NewService(db, userRepo, swipeRepo, quotaRepo, quotaService, ledgerService, engineCfg)
	messagingService := messaging.NewService(db, convRepo, userRepo, quotaService, ledgerService, engineCfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	walletHandler := handlers.NewWalletHandler(ledgerService, purchaseService)
	swipeHandler := handlers.NewSwipeHandler(swipeService)
	messagingHandler := handlers.NewMessagingHandler(messagingService)
	quotaHandler := handlers.NewQuotaHandler(quotaService)

	app.Get("/health", handlers.HealthCheck)

	// Public endpoints
	api := app.Group("/api")
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Protected routes
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", authHandler.ChangePassword)

	protected.Get("/profile", userHandler.GetProfile)
	protected.Put("/profile", userHandler.UpdateProfile)

	wallet := protected.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Post("/topup", walletHandler.TopUp)
	wallet.Get("/transactions", walletHandler.GetTransactions)

	protected.Get("/quota", quotaHandler.GetStatus)

	protected.Get("/candidates", swipeHandler.GetCandidates)
	protected.Post("/swipes", swipeHandler.Swipe)
	protected.Post("/swipes/undo", swipeHandler.UndoLastSkip)
	protected.Get("/matches", swipeHandler.ListMatches)

	conversations := protected.Group("/conversations")
	conversations.Post("/", messagingHandler.CreateConversation)
	conversations.Get("/", messagingHandler.ListConversations)
	conversations.Post("/:id/messages", messagingHandler.SendMessage)
	conversations.Get("/:id/messages", messagingHandler.GetMessages)
	conversations.Post("/:id/read", messagingHandler.MarkAsRead)

	admin := protected.Group("/admin", middleware.AdminOnly)
	admin.Post("/expire-messages", messagingHandler.ExpireMessages)

	return messagingService
}
