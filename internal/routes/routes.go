package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/handlers"
	"github.com/zapfunnel/zapfunnel-backend/internal/middleware"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, eng *engine.Engine, agentID string) {
	whatsappHandler := handlers.NewWhatsAppHandler(store, eng, agentID)
	configHandler := handlers.NewConfigHandler(store, agentID)
	adminHandler := handlers.NewAdminHandler(eng)

	// ========== CONFIG API ==========
	api := app.Group("/api")

	stages := api.Group("/stages")
	stages.Get("/", configHandler.ListStages)
	stages.Post("/", configHandler.CreateStage)

	variables := api.Group("/variables")
	variables.Get("/", configHandler.ListVariables)
	variables.Post("/", configHandler.CreateVariable)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - environment-aware signature validation
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
		if os.Getenv("ENVIRONMENT") == "development" {
			log.Println("⚠️  WhatsApp webhook validation DISABLED for development")
		}
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin")
	admin.Get("/sessions", adminHandler.SessionStats)
}
