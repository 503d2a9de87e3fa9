package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

func TestMemoryStoreAgents(t *testing.T) {
	store := NewMemoryStore()

	agent, err := store.CreateAgent(&models.Agent{Name: "Vendas"})
	require.NoError(t, err)
	assert.NotEmpty(t, agent.AgentID)
	// settings left at zero are filled with defaults
	assert.Equal(t, 30000, agent.DebounceTimeMs)
	assert.Equal(t, 5, agent.MaxMessagesPerBatch)
	assert.Equal(t, 300, agent.ChunkSize)
	assert.Equal(t, 1600, agent.MaxResponseLength)

	got, err := store.GetAgent(agent.AgentID)
	require.NoError(t, err)
	assert.Equal(t, "Vendas", got.Name)

	_, err = store.GetAgent("AG99999")
	assert.Error(t, err)
}

func TestMemoryStoreDefaultAgentIsOldestActive(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.CreateAgent(&models.Agent{Name: "Primeiro"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = store.CreateAgent(&models.Agent{Name: "Segundo"})
	require.NoError(t, err)

	got, err := store.GetDefaultAgent()
	require.NoError(t, err)
	assert.Equal(t, first.AgentID, got.AgentID)
}

func TestMemoryStoreStageOrdering(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateStage(&models.FunnelStage{
		AgentID: "AG1", Name: "Segundo", Position: 2, IsActive: true,
	})
	require.NoError(t, err)
	_, err = store.CreateStage(&models.FunnelStage{
		AgentID: "AG1", Name: "Primeiro", Position: 1, IsActive: true,
	})
	require.NoError(t, err)
	_, err = store.CreateStage(&models.FunnelStage{
		AgentID: "AG1", Name: "Inativo", Position: 3, IsActive: false,
	})
	require.NoError(t, err)
	_, err = store.CreateStage(&models.FunnelStage{
		AgentID: "AG2", Name: "Outro agente", Position: 1, IsActive: true,
	})
	require.NoError(t, err)

	active, err := store.GetActiveStages("AG1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Primeiro", active[0].Name)
	assert.Equal(t, "Segundo", active[1].Name)

	all, err := store.GetAllStages("AG1")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreStageActionNormalized(t *testing.T) {
	store := NewMemoryStore()

	stage, err := store.CreateStage(&models.FunnelStage{AgentID: "AG1", Name: "X"})
	require.NoError(t, err)
	assert.Equal(t, models.ActionNone, stage.Action)

	_, err = store.CreateStage(&models.FunnelStage{
		AgentID: "AG1", Name: "Y", Action: "explode",
	})
	assert.Error(t, err)
}

func TestMemoryStoreVariableSchema(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateVariableDefinition(&models.VariableDefinition{
		AgentID: "AG1", Key: "email", Type: models.VariableEmail,
	})
	require.NoError(t, err)

	// duplicate key for the same agent is rejected
	_, err = store.CreateVariableDefinition(&models.VariableDefinition{
		AgentID: "AG1", Key: "email",
	})
	assert.Error(t, err)

	// same key under another agent is fine
	_, err = store.CreateVariableDefinition(&models.VariableDefinition{
		AgentID: "AG2", Key: "email",
	})
	require.NoError(t, err)

	schema, err := store.GetVariableSchema("AG1")
	require.NoError(t, err)
	require.Len(t, schema, 1)
	assert.Equal(t, models.VariableEmail, schema[0].Type)
}

func TestMemoryStoreContacts(t *testing.T) {
	store := NewMemoryStore()

	contact, err := store.CreateContact(&models.Contact{
		AgentID: "AG1",
		Phone:   "whatsapp:+5511987654321",
		Name:    "Ana",
	})
	require.NoError(t, err)
	// channel prefix is stripped so the contact is keyed by bare number
	assert.Equal(t, "+5511987654321", contact.Phone)
	assert.NotEmpty(t, contact.ContactID)

	_, err = store.CreateContact(&models.Contact{AgentID: "AG1", Phone: "+5511987654321"})
	assert.Error(t, err)

	record, err := store.GetContactRecord("+5511987654321")
	require.NoError(t, err)
	assert.Equal(t, "Ana", record["name"])
	assert.Equal(t, "+5511987654321", record["phone"])
}

func TestMemoryStoreConversationLog(t *testing.T) {
	store := NewMemoryStore()
	phone := "+5511987654321"

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := store.SaveMessage(&models.Message{
			AgentID:   "AG1",
			Phone:     phone,
			Direction: models.DirectionInbound,
			Body:      string(rune('a' + i)),
			SentAt:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := store.SaveMessage(&models.Message{
		AgentID: "AG1", Phone: "+5511000000000", Direction: models.DirectionInbound, Body: "outro",
	})
	require.NoError(t, err)

	// most recent N, oldest first
	msgs, err := store.GetRecentMessages(phone, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "c", msgs[0].Body)
	assert.Equal(t, "e", msgs[2].Body)

	removed, err := store.DeleteMessagesBefore(base.Add(2 * time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	msgs, err = store.GetRecentMessages(phone, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}
