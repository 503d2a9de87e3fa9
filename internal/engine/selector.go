package engine

import (
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// SelectStage picks the applicable stage for a batch: the first stage in
// configuration order that is active, not cooling down for this session,
// and whose condition matches the batch text. Returns nil when none match;
// the caller then falls back to the base-personality reply path.
func SelectStage(stages []*models.FunnelStage, batchText string, session *Session, now time.Time) *models.FunnelStage {
	for _, stage := range stages {
		if !stage.IsActive {
			continue
		}
		if expiry, ok := session.StageCooldowns[stage.StageID]; ok && expiry.After(now) {
			continue
		}
		if Matches(stage.Condition, batchText) {
			return stage
		}
	}
	return nil
}

// armCooldown records the stage's follow-up cooldown on the session after a
// cycle completes, successful or not.
func armCooldown(session *Session, stage *models.FunnelStage, now time.Time) {
	if stage == nil || stage.FollowUpTimeoutMinutes <= 0 {
		return
	}
	session.StageCooldowns[stage.StageID] = now.Add(time.Duration(stage.FollowUpTimeoutMinutes) * time.Minute)
}
