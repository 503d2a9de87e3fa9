package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/models"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
	"github.com/zapfunnel/zapfunnel-backend/internal/utils"
)

// WhatsAppHandler feeds inbound webhook messages into the dispatch engine
type WhatsAppHandler struct {
	store   storage.Store
	engine  *engine.Engine
	agentID string
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(store storage.Store, eng *engine.Engine, agentID string) *WhatsAppHandler {
	return &WhatsAppHandler{
		store:   store,
		engine:  eng,
		agentID: agentID,
	}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid          string `form:"MessageSid"`
	AccountSid          string `form:"AccountSid"`
	MessagingServiceSid string `form:"MessagingServiceSid"`
	From                string `form:"From"` // WhatsApp number (whatsapp:+5511987654321)
	To                  string `form:"To"`   // Your Twilio number
	Body                string `form:"Body"` // Message text
	NumMedia            string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages. The webhook is
// acknowledged immediately; the engine batches and replies asynchronously.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status callbacks carry no body; only real messages go to the engine
	if payload.Body == "" || payload.From == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	phone := utils.NormalizePhone(payload.From)
	log.Printf("📱 WhatsApp message from %s: %s", phone, payload.Body)

	h.ensureContact(phone)
	h.engine.ReceiveMessage(phone, payload.Body, time.Now())

	return c.SendStatus(fiber.StatusOK)
}

// ensureContact auto-creates a contact on the first message from an
// unknown phone number.
func (h *WhatsAppHandler) ensureContact(phone string) {
	if _, err := h.store.GetContactByPhone(phone); err == nil {
		return
	}
	_, err := h.store.CreateContact(&models.Contact{
		AgentID: h.agentID,
		Phone:   phone,
	})
	if err != nil {
		log.Printf("Failed to auto-create contact for %s: %v", phone, err)
		return
	}
	log.Printf("Contact created for %s", phone)
}

// TestWebhookPayload is the JSON body accepted by the development endpoint
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	phone := utils.NormalizePhone(payload.From)
	log.Printf("🧪 Test webhook received from %s: %s", phone, payload.Message)

	h.ensureContact(phone)
	h.engine.ReceiveMessage(phone, payload.Message, time.Now())

	return c.JSON(fiber.Map{
		"success": true,
		"queued":  true,
	})
}
