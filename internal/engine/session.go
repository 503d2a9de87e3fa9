package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionState tracks where a session is in the pipeline cycle.
type SessionState string

const (
	StateIdle               SessionState = "IDLE"
	StateBuffering          SessionState = "BUFFERING"
	StateProcessing         SessionState = "PROCESSING"
	StateCollectingVariable SessionState = "COLLECTING_VARIABLE"
	StateDispatching        SessionState = "DISPATCHING"
)

// PendingMessage is one buffered inbound message awaiting batch flush.
type PendingMessage struct {
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Session holds all per-contact conversation state. A session is owned
// exclusively by its actor goroutine; no other component mutates it.
type Session struct {
	SessionID       string               `json:"session_id"`
	Phone           string               `json:"phone"`
	State           SessionState         `json:"state"`
	PendingMessages []PendingMessage     `json:"pending_messages"`
	Variables       map[string]string    `json:"variables"`
	ActiveStageID   string               `json:"active_stage_id"`
	StageCooldowns  map[string]time.Time `json:"stage_cooldowns"`
	CreatedAt       time.Time            `json:"created_at"`
	LastActivityAt  time.Time            `json:"last_activity_at"`
}

func newSession(phone string) *Session {
	now := time.Now()
	return &Session{
		SessionID:      fmt.Sprintf("SES%s", uuid.NewString()),
		Phone:          phone,
		State:          StateIdle,
		Variables:      make(map[string]string),
		StageCooldowns: make(map[string]time.Time),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}
