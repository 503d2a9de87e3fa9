package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message direction values
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message is one logged conversation message: an inbound user message or an
// outbound chunk. The log feeds prompt context for model-generated replies.
type Message struct {
	gorm.Model

	MessageID string    `json:"message_id" gorm:"uniqueIndex"`
	AgentID   string    `json:"agent_id" gorm:"index"`
	Phone     string    `json:"phone" gorm:"index"`
	Direction string    `json:"direction"` // "inbound" or "outbound"
	Body      string    `json:"body" gorm:"type:text"`
	SentAt    time.Time `json:"sent_at" gorm:"index"`
}

// BeforeCreate hook to auto-generate MessageID
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.MessageID == "" {
		m.MessageID = "MSG" + uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	return nil
}
