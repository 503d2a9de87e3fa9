package engine

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// executeAction runs the stage's side-effecting action with a bounded
// timeout and a single attempt. A retry could double-book a calendar or
// double-transfer to a human agent, so failures are logged and swallowed;
// the pipeline proceeds to render the reply regardless.
func (a *actor) executeAction(stage *models.FunnelStage) {
	if stage.Action == models.ActionNone {
		return
	}
	e := a.engine

	payload := make(map[string]string, len(a.session.Variables)+2)
	for k, v := range a.session.Variables {
		payload[k] = v
	}
	payload["phone"] = a.session.Phone
	payload["stage_id"] = stage.StageID

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ActionTimeout)
	defer cancel()

	start := time.Now()
	if err := e.actions.RunAction(ctx, string(stage.Action), payload); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		log.Printf("❌ Action %s failed for %s after %v: %v",
			stage.Action, a.session.Phone, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("✅ Action %s completed for %s in %v",
		stage.Action, a.session.Phone, time.Since(start).Round(time.Millisecond))
}
