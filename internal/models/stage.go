package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StageAction is the closed set of side effects a funnel stage can trigger.
type StageAction string

const (
	ActionNone            StageAction = "none"
	ActionCallAPI         StageAction = "call_api"
	ActionSendFile        StageAction = "send_file"
	ActionConnectCalendar StageAction = "connect_calendar"
	ActionTransferHuman   StageAction = "transfer_human"
)

// ParseStageAction validates a raw action string against the closed set.
// An empty string maps to ActionNone.
func ParseStageAction(raw string) (StageAction, error) {
	action := StageAction(strings.TrimSpace(strings.ToLower(raw)))
	switch action {
	case "":
		return ActionNone, nil
	case ActionNone, ActionCallAPI, ActionSendFile, ActionConnectCalendar, ActionTransferHuman:
		return action, nil
	default:
		return "", fmt.Errorf("unknown stage action %q", raw)
	}
}

// FunnelStage is a conditionally-triggered behavior unit: trigger condition,
// required data, an action, and a reply template. Read-only to the engine.
type FunnelStage struct {
	gorm.Model

	StageID string `json:"stage_id" gorm:"uniqueIndex"`
	AgentID string `json:"agent_id" gorm:"index"`
	Name    string `json:"name"`

	// Condition is a plain-text trigger phrase, matched case-insensitively
	// as a substring of the batch text. Empty means never auto-selected.
	Condition string `json:"condition"`

	// RequiredVariables lists variable keys collected before the stage's
	// instructions run, in declared order.
	RequiredVariables []string `json:"required_variables" gorm:"serializer:json;type:text"`

	Action StageAction `json:"action" gorm:"default:none"`

	// FinalInstructions is the reply template. Supports @key and
	// $contact.field placeholders. Empty means the reply is model-generated.
	FinalInstructions string `json:"final_instructions" gorm:"type:text"`

	// FollowUpTimeoutMinutes sets the cooldown after the stage fires during
	// which it cannot be reselected for the same contact. Zero disables it.
	FollowUpTimeoutMinutes int `json:"follow_up_timeout_minutes" gorm:"default:0"`

	// Position defines selection order within the agent's stage list.
	Position int  `json:"position" gorm:"index"`
	IsActive bool `json:"is_active" gorm:"default:true"`
}

// BeforeCreate hook to auto-generate StageID and normalize the action
func (s *FunnelStage) BeforeCreate(tx *gorm.DB) error {
	if s.StageID == "" {
		s.StageID = fmt.Sprintf("ST%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	action, err := ParseStageAction(string(s.Action))
	if err != nil {
		return err
	}
	s.Action = action
	return nil
}

// Validate checks the stage definition in isolation. Cross-references
// against the variable schema are checked at configuration load.
func (s *FunnelStage) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("stage %s: name is required", s.StageID)
	}
	if _, err := ParseStageAction(string(s.Action)); err != nil {
		return fmt.Errorf("stage %s: %w", s.StageID, err)
	}
	seen := make(map[string]bool)
	for _, key := range s.RequiredVariables {
		if key == "" {
			return fmt.Errorf("stage %s: empty required variable key", s.StageID)
		}
		if seen[key] {
			return fmt.Errorf("stage %s: duplicate required variable %q", s.StageID, key)
		}
		seen[key] = true
	}
	return nil
}
