package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/middleware"
	"github.com/Aqib6220/lms/backend/routes"
	"github.com/Aqib6220/lms/backend/storage"
	"github.com/Aqib6220/lms/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Initialize media store
	store, err := storage.Init(cfg.CloudinaryURL, logger)
	if err != nil {
		log.Fatalf("Error initializing media store: %v", err)
	}

	// Create Fiber app; body limit leaves headroom over the per-file cap
	app := fiber.New(fiber.Config{
		BodyLimit: config.MaxUploadSize + 10*1024*1024,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, store, cfg, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
