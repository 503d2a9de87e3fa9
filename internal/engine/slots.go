package engine

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

const maxSlotAttempts = 3

// fillVariables ensures every variable the stage requires is present on the
// session, collecting missing ones one at a time in declared order. Returns
// false only when the actor is stopped mid-collection.
func (a *actor) fillVariables(stage *models.FunnelStage) bool {
	if len(stage.RequiredVariables) == 0 {
		return true
	}
	e := a.engine

	schema, err := e.store.GetVariableSchema(e.agent.AgentID)
	if err != nil {
		log.Printf("Failed to load variable schema for %s: %v", a.session.Phone, err)
		return true
	}
	defs := make(map[string]*models.VariableDefinition, len(schema))
	for _, def := range schema {
		defs[def.Key] = def
	}

	for _, key := range stage.RequiredVariables {
		if _, ok := a.session.Variables[key]; ok {
			continue
		}
		def, ok := defs[key]
		if !ok {
			// references are validated at config load; a schema edited
			// after startup can still leave a stale key
			log.Printf("⚠️  Variable %q missing from schema, skipping slot", key)
			continue
		}
		if !a.collectVariable(def) {
			return false
		}
	}

	a.session.State = StateProcessing
	return true
}

// collectVariable prompts for one variable and consumes the next inbound
// batch as the answer rather than a new trigger. Invalid answers re-prompt
// up to maxSlotAttempts, then the slot is skipped so the conversation never
// stalls on one stubborn field.
func (a *actor) collectVariable(def *models.VariableDefinition) bool {
	a.session.State = StateCollectingVariable

	for attempt := 1; attempt <= maxSlotAttempts; attempt++ {
		a.sendDirect(slotPrompt(def, attempt > 1))

		answer, ok := a.awaitAnswer()
		if !ok {
			return false
		}
		if err := def.ValidateValue(answer); err != nil {
			log.Printf("Slot %s attempt %d/%d rejected for %s: %v",
				def.Key, attempt, maxSlotAttempts, a.session.Phone, err)
			continue
		}

		a.session.Variables[def.Key] = strings.TrimSpace(answer)
		return true
	}

	log.Printf("⚠️  Slot %s skipped for %s after %d attempts", def.Key, a.session.Phone, maxSlotAttempts)
	return true
}

// awaitAnswer blocks until the next inbound batch arrives. The batch goes
// through the same debounce buffering as any other message.
func (a *actor) awaitAnswer() (string, bool) {
	select {
	case <-a.stop:
		return "", false
	case msg := <-a.inbox:
		answer, ok := a.collectBatch(msg)
		a.session.State = StateCollectingVariable
		return answer, ok
	}
}

func slotPrompt(def *models.VariableDefinition, retry bool) string {
	label := def.Label
	if label == "" {
		label = def.Key
	}
	prompt := fmt.Sprintf("Por favor, informe seu %s:", label)
	if !retry {
		return prompt
	}
	switch def.Type {
	case models.VariablePhone:
		return "Hmm, esse telefone não parece válido. " + prompt
	case models.VariableEmail:
		return "Hmm, esse e-mail não parece válido. " + prompt
	case models.VariableNumber:
		return "Preciso de um número válido. " + prompt
	default:
		return "Não entendi. " + prompt
	}
}

// sendDirect sends a single message immediately, outside a dispatch job.
func (a *actor) sendDirect(text string) {
	e := a.engine
	if err := e.transport.SendChunk(a.session.Phone, text); err != nil {
		log.Printf("❌ Failed to send prompt to %s: %v", a.session.Phone, err)
	}
	e.logMessage(a.session.Phone, models.DirectionOutbound, text, time.Now())
}
