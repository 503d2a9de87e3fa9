package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/models"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
)

// ConfigHandler exposes the funnel configuration the engine reads: stages
// and the variable schema. Writes validate against the engine's rules so
// bad config is rejected at load, not at message time.
type ConfigHandler struct {
	store   storage.Store
	agentID string
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(store storage.Store, agentID string) *ConfigHandler {
	return &ConfigHandler{store: store, agentID: agentID}
}

// ListStages returns all stages in selection order
func (h *ConfigHandler) ListStages(c *fiber.Ctx) error {
	stages, err := h.store.GetAllStages(h.agentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"stages": stages, "count": len(stages)})
}

// CreateStage adds a funnel stage after validating it against the schema
func (h *ConfigHandler) CreateStage(c *fiber.Ctx) error {
	var stage models.FunnelStage
	if err := c.BodyParser(&stage); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stage payload",
		})
	}
	stage.AgentID = h.agentID
	stage.IsActive = true

	schema, err := h.store.GetVariableSchema(h.agentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := engine.ValidateConfigSet([]*models.FunnelStage{&stage}, schema); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	created, err := h.store.CreateStage(&stage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("Stage %q created (%s)", created.Name, created.StageID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListVariables returns the agent's variable schema
func (h *ConfigHandler) ListVariables(c *fiber.Ctx) error {
	defs, err := h.store.GetVariableSchema(h.agentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"variables": defs, "count": len(defs)})
}

// CreateVariable adds a variable definition to the schema
func (h *ConfigHandler) CreateVariable(c *fiber.Ctx) error {
	var def models.VariableDefinition
	if err := c.BodyParser(&def); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid variable payload",
		})
	}
	def.AgentID = h.agentID

	if _, err := models.ParseVariableType(string(def.Type)); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	created, err := h.store.CreateVariableDefinition(&def)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Printf("Variable %q added to schema", created.Key)
	return c.Status(fiber.StatusCreated).JSON(created)
}
