package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// MemoryStore holds all data in memory, for development and tests
type MemoryStore struct {
	agents    map[string]*models.Agent
	stages    map[string]*models.FunnelStage
	variables map[string]*models.VariableDefinition // keyed by agentID+"/"+key
	contacts  map[string]*models.Contact            // keyed by phone
	messages  []*models.Message

	// Mutexes for thread safety
	agentMu    sync.RWMutex
	stageMu    sync.RWMutex
	variableMu sync.RWMutex
	contactMu  sync.RWMutex
	messageMu  sync.RWMutex

	// Counters for ID generation
	agentCounter int
	stageCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:    make(map[string]*models.Agent),
		stages:    make(map[string]*models.FunnelStage),
		variables: make(map[string]*models.VariableDefinition),
		contacts:  make(map[string]*models.Contact),
	}
}

// Agent operations

func (m *MemoryStore) CreateAgent(agent *models.Agent) (*models.Agent, error) {
	m.agentMu.Lock()
	defer m.agentMu.Unlock()

	if agent.AgentID == "" {
		m.agentCounter++
		agent.AgentID = fmt.Sprintf("AG%05d", m.agentCounter)
	}
	agent.ApplyDefaults()
	agent.IsActive = true
	agent.CreatedAt = time.Now()
	agent.UpdatedAt = time.Now()

	m.agents[agent.AgentID] = agent
	return agent, nil
}

func (m *MemoryStore) GetAgent(agentID string) (*models.Agent, error) {
	m.agentMu.RLock()
	defer m.agentMu.RUnlock()

	agent, exists := m.agents[agentID]
	if !exists {
		return nil, fmt.Errorf("agent not found")
	}
	return agent, nil
}

func (m *MemoryStore) GetDefaultAgent() (*models.Agent, error) {
	m.agentMu.RLock()
	defer m.agentMu.RUnlock()

	var oldest *models.Agent
	for _, agent := range m.agents {
		if !agent.IsActive {
			continue
		}
		if oldest == nil || agent.CreatedAt.Before(oldest.CreatedAt) {
			oldest = agent
		}
	}
	if oldest == nil {
		return nil, fmt.Errorf("no active agent configured")
	}
	return oldest, nil
}

func (m *MemoryStore) UpdateAgent(agent *models.Agent) error {
	m.agentMu.Lock()
	defer m.agentMu.Unlock()

	if _, exists := m.agents[agent.AgentID]; !exists {
		return fmt.Errorf("agent not found")
	}
	agent.UpdatedAt = time.Now()
	m.agents[agent.AgentID] = agent
	return nil
}

// Funnel stage operations

func (m *MemoryStore) CreateStage(stage *models.FunnelStage) (*models.FunnelStage, error) {
	action, err := models.ParseStageAction(string(stage.Action))
	if err != nil {
		return nil, err
	}
	stage.Action = action

	m.stageMu.Lock()
	defer m.stageMu.Unlock()

	if stage.StageID == "" {
		m.stageCounter++
		stage.StageID = fmt.Sprintf("ST%05d", m.stageCounter)
	}
	if stage.Position == 0 {
		stage.Position = len(m.stages) + 1
	}
	stage.CreatedAt = time.Now()
	stage.UpdatedAt = time.Now()

	m.stages[stage.StageID] = stage
	return stage, nil
}

func (m *MemoryStore) GetStage(stageID string) (*models.FunnelStage, error) {
	m.stageMu.RLock()
	defer m.stageMu.RUnlock()

	stage, exists := m.stages[stageID]
	if !exists {
		return nil, fmt.Errorf("stage not found")
	}
	return stage, nil
}

func (m *MemoryStore) GetActiveStages(agentID string) ([]*models.FunnelStage, error) {
	m.stageMu.RLock()
	defer m.stageMu.RUnlock()

	var stages []*models.FunnelStage
	for _, stage := range m.stages {
		if stage.AgentID == agentID && stage.IsActive {
			stages = append(stages, stage)
		}
	}
	sortStages(stages)
	return stages, nil
}

func (m *MemoryStore) GetAllStages(agentID string) ([]*models.FunnelStage, error) {
	m.stageMu.RLock()
	defer m.stageMu.RUnlock()

	var stages []*models.FunnelStage
	for _, stage := range m.stages {
		if stage.AgentID == agentID {
			stages = append(stages, stage)
		}
	}
	sortStages(stages)
	return stages, nil
}

func (m *MemoryStore) UpdateStage(stage *models.FunnelStage) error {
	m.stageMu.Lock()
	defer m.stageMu.Unlock()

	if _, exists := m.stages[stage.StageID]; !exists {
		return fmt.Errorf("stage not found")
	}
	stage.UpdatedAt = time.Now()
	m.stages[stage.StageID] = stage
	return nil
}

// sortStages orders by Position, then creation order for stable selection.
func sortStages(stages []*models.FunnelStage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].Position != stages[j].Position {
			return stages[i].Position < stages[j].Position
		}
		return stages[i].CreatedAt.Before(stages[j].CreatedAt)
	})
}

// Variable schema operations

func (m *MemoryStore) CreateVariableDefinition(def *models.VariableDefinition) (*models.VariableDefinition, error) {
	varType, err := models.ParseVariableType(string(def.Type))
	if err != nil {
		return nil, err
	}
	def.Type = varType

	m.variableMu.Lock()
	defer m.variableMu.Unlock()

	key := def.AgentID + "/" + def.Key
	if _, exists := m.variables[key]; exists {
		return nil, fmt.Errorf("variable %q already defined", def.Key)
	}
	def.CreatedAt = time.Now()
	def.UpdatedAt = time.Now()

	m.variables[key] = def
	return def, nil
}

func (m *MemoryStore) GetVariableSchema(agentID string) ([]*models.VariableDefinition, error) {
	m.variableMu.RLock()
	defer m.variableMu.RUnlock()

	var defs []*models.VariableDefinition
	for _, def := range m.variables {
		if def.AgentID == agentID {
			defs = append(defs, def)
		}
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].CreatedAt.Before(defs[j].CreatedAt)
	})
	return defs, nil
}

// Contact operations

func (m *MemoryStore) CreateContact(contact *models.Contact) (*models.Contact, error) {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	contact.Phone = strings.TrimSpace(strings.TrimPrefix(contact.Phone, "whatsapp:"))
	if _, exists := m.contacts[contact.Phone]; exists {
		return nil, fmt.Errorf("contact already exists")
	}
	if contact.ContactID == "" {
		contact.ContactID = "CT" + uuid.NewString()
	}
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()

	m.contacts[contact.Phone] = contact
	return contact, nil
}

func (m *MemoryStore) GetContactByPhone(phone string) (*models.Contact, error) {
	m.contactMu.RLock()
	defer m.contactMu.RUnlock()

	contact, exists := m.contacts[phone]
	if !exists {
		return nil, fmt.Errorf("contact not found")
	}
	return contact, nil
}

func (m *MemoryStore) GetContactRecord(phone string) (map[string]string, error) {
	contact, err := m.GetContactByPhone(phone)
	if err != nil {
		return nil, err
	}
	return contact.Record(), nil
}

func (m *MemoryStore) UpdateContact(contact *models.Contact) error {
	m.contactMu.Lock()
	defer m.contactMu.Unlock()

	if _, exists := m.contacts[contact.Phone]; !exists {
		return fmt.Errorf("contact not found")
	}
	contact.UpdatedAt = time.Now()
	m.contacts[contact.Phone] = contact
	return nil
}

// Conversation log operations

func (m *MemoryStore) SaveMessage(msg *models.Message) (*models.Message, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	if msg.MessageID == "" {
		msg.MessageID = "MSG" + uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	msg.CreatedAt = time.Now()

	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *MemoryStore) GetRecentMessages(phone string, limit int) ([]*models.Message, error) {
	m.messageMu.RLock()
	defer m.messageMu.RUnlock()

	var matched []*models.Message
	for _, msg := range m.messages {
		if msg.Phone == phone {
			matched = append(matched, msg)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func (m *MemoryStore) DeleteMessagesBefore(cutoff time.Time) (int64, error) {
	m.messageMu.Lock()
	defer m.messageMu.Unlock()

	var kept []*models.Message
	var removed int64
	for _, msg := range m.messages {
		if msg.SentAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return removed, nil
}
