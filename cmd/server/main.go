// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"time"

	"fundmatch/internal/config"
	"fundmatch/internal/repositories"
	"fundmatch/internal/routes"
	pkglogger "fundmatch/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
)

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration
// - Initializes database and cache connections
// - Configures routes and the expiry sweep scheduler
// - Starts the HTTP server
func main() {
	config.LoadEnv()
	pkglogger.Init(config.GetEnv("LOG_LEVEL", "info"), config.GetEnv("LOG_FORMAT", "text"))

	engineCfg := config.LoadEngineConfig()

	// New swipe quota rows inherit these values.
	repositories.SwipeQuotaDefaults.DailyFreeLimit = engineCfg.DailyFreeSwipeLimit
	repositories.SwipeQuotaDefaults.PointsPerSwipe = engineCfg.PointsPerSwipe
	repositories.SwipeQuotaDefaults.PointsPerUndo = engineCfg.PointsPerUndo

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Successfully connected to database")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(429).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	messagingService := routes.SetupRoutes(app, repositories.DB, engineCfg)

	// Periodic sweep flagging expired messages. Reads filter on expiry
	// anyway, so the sweep cadence only affects storage hygiene.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if _, err := messagingService.ExpireMessages(context.Background()); err != nil {
			pkglogger.Errorf("message expiry sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule expiry sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
