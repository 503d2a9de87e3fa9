package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/zapfunnel/zapfunnel-backend/database"
	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/jobs"
	"github.com/zapfunnel/zapfunnel-backend/internal/models"
	"github.com/zapfunnel/zapfunnel-backend/internal/routes"
	"github.com/zapfunnel/zapfunnel-backend/internal/services"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Agent{},
			&models.FunnelStage{},
			&models.VariableDefinition{},
			&models.Contact{},
			&models.Message{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Outbound transport: Twilio when configured, console dry-run otherwise
	var transport engine.Transport
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio not configured (%v) - outbound chunks go to console", err)
		transport = services.ConsoleTransport{}
	} else {
		log.Println("✅ Twilio service initialized")
		transport = twilioService
	}

	// Text completion: optional; stages without final instructions fall back
	// to the error reply when absent
	var completion engine.Completion
	completionService, err := services.NewCompletionService()
	if err != nil {
		log.Printf("⚠️  Completion service not configured: %v", err)
	} else {
		log.Println("✅ Completion service initialized")
		completion = completionService
	}

	actionService := services.NewActionService()

	// Ensure a default agent exists
	agent, err := store.GetDefaultAgent()
	if err != nil {
		log.Println("No agent found - creating default agent")
		agent, err = store.CreateAgent(&models.Agent{
			Name:     "Agente Padrão",
			IsActive: true,
		})
		if err != nil {
			log.Fatal("Failed to create default agent:", err)
		}
	}
	log.Printf("🤖 Agent: %s (%s)", agent.Name, agent.AgentID)

	// Build the dispatch engine from the agent's stored settings
	cfg := engine.ConfigFromAgent(agent)
	if raw := os.Getenv("SESSION_TTL_MINUTES"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.SessionTTL = time.Duration(parsed) * time.Minute
		}
	}

	eng := engine.New(store, transport, completion, actionService, agent, cfg)
	if err := eng.Start(); err != nil {
		log.Fatal("Failed to start dispatch engine:", err)
	}

	// Start background maintenance
	maintenanceJob := jobs.NewMaintenanceJob(store, eng)
	maintenanceJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "ZapFunnel Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint with engine status
	app.Get("/", func(c *fiber.Ctx) error {
		stats := eng.Stats()
		response := fiber.Map{
			"service":     "ZapFunnel Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"agent":       agent.AgentID,
			"whatsapp": fiber.Map{
				"configured": twilioService != nil,
			},
			"sessions": fiber.Map{
				"active":       stats.ActiveSessions,
				"avg_idle_min": stats.AverageIdleMinutes,
			},
		}

		// Add database status if using database
		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var stageCount, variableCount, contactCount, messageCount int64
			database.DB.Model(&models.FunnelStage{}).Count(&stageCount)
			database.DB.Model(&models.VariableDefinition{}).Count(&variableCount)
			database.DB.Model(&models.Contact{}).Count(&contactCount)
			database.DB.Model(&models.Message{}).Count(&messageCount)

			response["database"] = fiber.Map{
				"status":    dbStatus,
				"stages":    stageCount,
				"variables": variableCount,
				"contacts":  contactCount,
				"messages":  messageCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database":   status == "healthy",
				"twilio":     twilioService != nil,
				"completion": completion != nil,
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, eng, agent.AgentID)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping maintenance jobs...")
		maintenanceJob.Stop()
		log.Println("⏹️  Stopping dispatch engine...")
		eng.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 ZapFunnel Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 WhatsApp: %s", getWhatsAppStatus(twilioService != nil))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getWhatsAppStatus(configured bool) string {
	if !configured {
		return "Dry-run (console)"
	}
	return "Configured"
}
