package storage

import (
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for configuration and conversation storage
type Store interface {
	// Agent operations
	CreateAgent(agent *models.Agent) (*models.Agent, error)
	GetAgent(agentID string) (*models.Agent, error)
	GetDefaultAgent() (*models.Agent, error)
	UpdateAgent(agent *models.Agent) error

	// Funnel stage operations
	CreateStage(stage *models.FunnelStage) (*models.FunnelStage, error)
	GetStage(stageID string) (*models.FunnelStage, error)
	GetActiveStages(agentID string) ([]*models.FunnelStage, error)
	GetAllStages(agentID string) ([]*models.FunnelStage, error)
	UpdateStage(stage *models.FunnelStage) error

	// Variable schema operations
	CreateVariableDefinition(def *models.VariableDefinition) (*models.VariableDefinition, error)
	GetVariableSchema(agentID string) ([]*models.VariableDefinition, error)

	// Contact operations
	CreateContact(contact *models.Contact) (*models.Contact, error)
	GetContactByPhone(phone string) (*models.Contact, error)
	GetContactRecord(phone string) (map[string]string, error)
	UpdateContact(contact *models.Contact) error

	// Conversation log operations
	SaveMessage(msg *models.Message) (*models.Message, error)
	GetRecentMessages(phone string, limit int) ([]*models.Message, error)
	DeleteMessagesBefore(cutoff time.Time) (int64, error)
}
