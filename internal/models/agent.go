package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Agent holds the behavioral settings for one conversational agent.
// A deployment runs a single default agent; settings are read-only to the
// engine at runtime.
type Agent struct {
	gorm.Model

	AgentID         string `json:"agent_id" gorm:"uniqueIndex"`
	Name            string `json:"name"`
	BasePersonality string `json:"base_personality" gorm:"type:text"`

	// Message batching
	DebounceEnabled     bool `json:"debounce_enabled" gorm:"default:true"`
	DebounceTimeMs      int  `json:"debounce_time_ms" gorm:"default:30000"`
	MaxMessagesPerBatch int  `json:"max_messages_per_batch" gorm:"default:5"`

	// Chunked delivery
	ChunkSize          int  `json:"chunk_size" gorm:"default:300"`
	ChunkDelayMs       int  `json:"chunk_delay_ms" gorm:"default:2000"`
	RandomDelayEnabled bool `json:"random_delay_enabled" gorm:"default:false"`
	MinDelayMs         int  `json:"min_delay_ms" gorm:"default:3000"`
	MaxDelayMs         int  `json:"max_delay_ms" gorm:"default:5000"`

	// Reply rendering
	MaxResponseLength int `json:"max_response_length" gorm:"default:1600"`

	IsActive bool `json:"is_active" gorm:"default:true"`
}

// BeforeCreate hook to auto-generate AgentID and fill unset settings
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.AgentID == "" {
		a.AgentID = fmt.Sprintf("AG%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	a.ApplyDefaults()
	return nil
}

// ApplyDefaults fills zero-valued settings with the engine defaults.
func (a *Agent) ApplyDefaults() {
	if a.DebounceTimeMs <= 0 {
		a.DebounceTimeMs = 30000
	}
	if a.MaxMessagesPerBatch <= 0 {
		a.MaxMessagesPerBatch = 5
	}
	if a.ChunkSize <= 0 {
		a.ChunkSize = 300
	}
	if a.ChunkDelayMs <= 0 {
		a.ChunkDelayMs = 2000
	}
	if a.MinDelayMs <= 0 {
		a.MinDelayMs = 3000
	}
	if a.MaxDelayMs < a.MinDelayMs {
		a.MaxDelayMs = a.MinDelayMs + 2000
	}
	if a.MaxResponseLength <= 0 {
		a.MaxResponseLength = 1600
	}
}
