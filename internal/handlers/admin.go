package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
)

// AdminHandler exposes engine monitoring endpoints
type AdminHandler struct {
	engine *engine.Engine
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(eng *engine.Engine) *AdminHandler {
	return &AdminHandler{engine: eng}
}

// SessionStats reports active session counts
func (h *AdminHandler) SessionStats(c *fiber.Ctx) error {
	return c.JSON(h.engine.Stats())
}
