package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
)

// FallbackReply is the single chunk sent when final-text generation fails.
const FallbackReply = "Ocorreu um erro, por favor tente novamente."

// Config holds the engine's timing and sizing knobs.
type Config struct {
	DebounceEnabled     bool
	DebounceTime        time.Duration
	MaxMessagesPerBatch int

	ChunkSize          int
	ChunkDelay         time.Duration
	RandomDelayEnabled bool
	MinDelay           time.Duration
	MaxDelay           time.Duration

	MaxResponseLength int
	ActionTimeout     time.Duration
	CompletionTimeout time.Duration
	SessionTTL        time.Duration
	HistoryLimit      int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DebounceEnabled:     true,
		DebounceTime:        30 * time.Second,
		MaxMessagesPerBatch: 5,
		ChunkSize:           300,
		ChunkDelay:          2 * time.Second,
		RandomDelayEnabled:  false,
		MinDelay:            3 * time.Second,
		MaxDelay:            5 * time.Second,
		MaxResponseLength:   1600,
		ActionTimeout:       15 * time.Second,
		CompletionTimeout:   30 * time.Second,
		SessionTTL:          30 * time.Minute,
		HistoryLimit:        20,
	}
}

// ConfigFromAgent overlays an agent's stored settings on the defaults.
func ConfigFromAgent(agent *models.Agent) Config {
	cfg := DefaultConfig()
	cfg.DebounceEnabled = agent.DebounceEnabled
	cfg.RandomDelayEnabled = agent.RandomDelayEnabled
	if agent.DebounceTimeMs > 0 {
		cfg.DebounceTime = time.Duration(agent.DebounceTimeMs) * time.Millisecond
	}
	if agent.MaxMessagesPerBatch > 0 {
		cfg.MaxMessagesPerBatch = agent.MaxMessagesPerBatch
	}
	if agent.ChunkSize > 0 {
		cfg.ChunkSize = agent.ChunkSize
	}
	if agent.ChunkDelayMs > 0 {
		cfg.ChunkDelay = time.Duration(agent.ChunkDelayMs) * time.Millisecond
	}
	if agent.MinDelayMs > 0 {
		cfg.MinDelay = time.Duration(agent.MinDelayMs) * time.Millisecond
	}
	if agent.MaxDelayMs > 0 {
		cfg.MaxDelay = time.Duration(agent.MaxDelayMs) * time.Millisecond
	}
	if agent.MaxResponseLength > 0 {
		cfg.MaxResponseLength = agent.MaxResponseLength
	}
	return cfg
}

// Transport delivers one outbound chunk to the contact's channel. Delivery
// retry is the transport's responsibility, not the engine's.
type Transport interface {
	SendChunk(phone, text string) error
}

// HistoryMessage is one turn of prior conversation passed to the
// text-completion collaborator.
type HistoryMessage struct {
	Role    string // "user" or "assistant"
	Content string
}

// PromptContext carries everything the completion collaborator needs to
// phrase a reply.
type PromptContext struct {
	Personality string
	History     []HistoryMessage
	UserMessage string
	Variables   map[string]string
}

// Completion generates reply text when no static template applies.
type Completion interface {
	GenerateReply(ctx context.Context, pc PromptContext) (string, error)
}

// ActionRunner invokes a named external action with the session variables
// as payload. Implementations get a single bounded attempt.
type ActionRunner interface {
	RunAction(ctx context.Context, name string, payload map[string]string) error
}

// Engine is the conversational dispatch engine: it routes inbound messages
// to per-contact session actors that batch, select a funnel stage, collect
// variables, run the stage action, render a reply and pace its delivery.
type Engine struct {
	store      storage.Store
	transport  Transport
	completion Completion
	actions    ActionRunner
	agent      *models.Agent
	cfg        Config
	manager    *SessionManager
}

// New creates an engine for one agent.
func New(store storage.Store, transport Transport, completion Completion, actions ActionRunner, agent *models.Agent, cfg Config) *Engine {
	e := &Engine{
		store:      store,
		transport:  transport,
		completion: completion,
		actions:    actions,
		agent:      agent,
		cfg:        cfg,
	}
	e.manager = newSessionManager(e)
	return e
}

// Start validates the stored configuration set and begins idle-session
// cleanup. Malformed stage or variable config is rejected here, before any
// message is processed.
func (e *Engine) Start() error {
	stages, err := e.store.GetAllStages(e.agent.AgentID)
	if err != nil {
		return fmt.Errorf("failed to load stages: %w", err)
	}
	schema, err := e.store.GetVariableSchema(e.agent.AgentID)
	if err != nil {
		return fmt.Errorf("failed to load variable schema: %w", err)
	}
	if err := ValidateConfigSet(stages, schema); err != nil {
		return err
	}

	e.manager.start()
	log.Printf("✅ Dispatch engine started for agent %s (%d stages, %d variables)",
		e.agent.AgentID, len(stages), len(schema))
	return nil
}

// Stop halts all session actors and the cleanup routine.
func (e *Engine) Stop() {
	e.manager.shutdown()
	log.Println("⏹️  Dispatch engine stopped")
}

// ReceiveMessage is the inbound boundary, invoked by the transport adapter
// for each new message. It never blocks the caller: the message is logged
// and handed to the contact's session actor.
func (e *Engine) ReceiveMessage(phone, text string, receivedAt time.Time) {
	if strings.TrimSpace(text) == "" {
		return
	}
	e.logMessage(phone, models.DirectionInbound, text, receivedAt)
	e.manager.deliver(phone, text, receivedAt)
}

// Stats reports current session counts for monitoring.
func (e *Engine) Stats() *SessionStats {
	return e.manager.stats()
}

func (e *Engine) logMessage(phone, direction, body string, at time.Time) {
	_, err := e.store.SaveMessage(&models.Message{
		AgentID:   e.agent.AgentID,
		Phone:     phone,
		Direction: direction,
		Body:      body,
		SentAt:    at,
	})
	if err != nil {
		log.Printf("Failed to log %s message for %s: %v", direction, phone, err)
	}
}
