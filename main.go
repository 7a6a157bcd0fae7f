package main

import (
	"log"

	"taskboard-backend/config"
	"taskboard-backend/database"
	"taskboard-backend/middlewares"
	"taskboard-backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	config.Load()

	// ---- Database
	database.Connect()
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// ---- Limits (configurable via env)
	// Fiber default BodyLimit is 4 * 1024 * 1024 bytes if unset (per docs).
	bodyLimitBytes := config.Int("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = config.Int("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.String("ALLOWED_ORIGINS", "*"),
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Request pipeline: identity first (never fails a request), then the
	// role-aware rate limiter, then routing. Per-route gates live in routes.
	app.Use(middlewares.ResolveIdentity())
	app.Use(middlewares.RateLimit())

	// ---- Routes
	routes.Register(app)

	// ---- Start
	port := config.String("PORT", "8080")
	if err := app.Listen(":" + port); err != nil {
		panic(err)
	}
}
