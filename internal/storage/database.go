package storage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// DatabaseStore persists everything in PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Agent operations

func (d *DatabaseStore) CreateAgent(agent *models.Agent) (*models.Agent, error) {
	if err := d.db.Create(agent).Error; err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}
	return agent, nil
}

func (d *DatabaseStore) GetAgent(agentID string) (*models.Agent, error) {
	var agent models.Agent
	if err := d.db.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return nil, fmt.Errorf("agent not found: %w", err)
	}
	return &agent, nil
}

func (d *DatabaseStore) GetDefaultAgent() (*models.Agent, error) {
	var agent models.Agent
	if err := d.db.Where("is_active = ?", true).Order("created_at asc").First(&agent).Error; err != nil {
		return nil, fmt.Errorf("no active agent configured: %w", err)
	}
	return &agent, nil
}

func (d *DatabaseStore) UpdateAgent(agent *models.Agent) error {
	if err := d.db.Save(agent).Error; err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

// Funnel stage operations

func (d *DatabaseStore) CreateStage(stage *models.FunnelStage) (*models.FunnelStage, error) {
	if err := d.db.Create(stage).Error; err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}
	return stage, nil
}

func (d *DatabaseStore) GetStage(stageID string) (*models.FunnelStage, error) {
	var stage models.FunnelStage
	if err := d.db.Where("stage_id = ?", stageID).First(&stage).Error; err != nil {
		return nil, fmt.Errorf("stage not found: %w", err)
	}
	return &stage, nil
}

func (d *DatabaseStore) GetActiveStages(agentID string) ([]*models.FunnelStage, error) {
	var stages []*models.FunnelStage
	err := d.db.
		Where("agent_id = ? AND is_active = ?", agentID, true).
		Order("position asc, created_at asc").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active stages: %w", err)
	}
	return stages, nil
}

func (d *DatabaseStore) GetAllStages(agentID string) ([]*models.FunnelStage, error) {
	var stages []*models.FunnelStage
	err := d.db.
		Where("agent_id = ?", agentID).
		Order("position asc, created_at asc").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	return stages, nil
}

func (d *DatabaseStore) UpdateStage(stage *models.FunnelStage) error {
	if err := d.db.Save(stage).Error; err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	return nil
}

// Variable schema operations

func (d *DatabaseStore) CreateVariableDefinition(def *models.VariableDefinition) (*models.VariableDefinition, error) {
	if err := d.db.Create(def).Error; err != nil {
		return nil, fmt.Errorf("failed to create variable definition: %w", err)
	}
	return def, nil
}

func (d *DatabaseStore) GetVariableSchema(agentID string) ([]*models.VariableDefinition, error) {
	var defs []*models.VariableDefinition
	err := d.db.
		Where("agent_id = ?", agentID).
		Order("created_at asc").
		Find(&defs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load variable schema: %w", err)
	}
	return defs, nil
}

// Contact operations

func (d *DatabaseStore) CreateContact(contact *models.Contact) (*models.Contact, error) {
	if err := d.db.Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (d *DatabaseStore) GetContactByPhone(phone string) (*models.Contact, error) {
	var contact models.Contact
	if err := d.db.Where("phone = ?", phone).First(&contact).Error; err != nil {
		return nil, fmt.Errorf("contact not found: %w", err)
	}
	return &contact, nil
}

func (d *DatabaseStore) GetContactRecord(phone string) (map[string]string, error) {
	contact, err := d.GetContactByPhone(phone)
	if err != nil {
		return nil, err
	}
	return contact.Record(), nil
}

func (d *DatabaseStore) UpdateContact(contact *models.Contact) error {
	if err := d.db.Save(contact).Error; err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// Conversation log operations

func (d *DatabaseStore) SaveMessage(msg *models.Message) (*models.Message, error) {
	if err := d.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	return msg, nil
}

func (d *DatabaseStore) GetRecentMessages(phone string, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := d.db.Where("phone = ?", phone).Order("sent_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (d *DatabaseStore) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	result := d.db.Unscoped().Where("sent_at < ?", cutoff).Delete(&models.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}
