package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

var (
	contactPlaceholderRe  = regexp.MustCompile(`\$contact\.([A-Za-z0-9_]+)`)
	variablePlaceholderRe = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
)

// RenderTemplate substitutes every @key placeholder from the session
// variables and every $contact.field placeholder from the contact record.
// Unresolved placeholders are replaced with an empty string so missing data
// never leaks a broken-looking token into user-facing text.
func RenderTemplate(template string, variables, contact map[string]string) string {
	out := contactPlaceholderRe.ReplaceAllStringFunc(template, func(match string) string {
		field := contactPlaceholderRe.FindStringSubmatch(match)[1]
		return contact[field]
	})
	out = variablePlaceholderRe.ReplaceAllStringFunc(out, func(match string) string {
		key := variablePlaceholderRe.FindStringSubmatch(match)[1]
		return variables[key]
	})
	return strings.TrimSpace(out)
}

// TruncateAtWhitespace caps text at max runes. When a cut is needed, the
// cut point moves backward to the nearest whitespace so no word is split.
func TruncateAtWhitespace(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := max
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		// single word longer than the cap, hard cut
		cut = max
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
}

// renderReply builds the final outbound text for the cycle. Stages with a
// template render locally; stages without one, and the no-stage path, ask
// the completion collaborator using the base personality and recent
// history. Completion errors propagate so the caller can send the fallback.
func (a *actor) renderReply(stage *models.FunnelStage, batchText string) (string, error) {
	e := a.engine

	contact, err := e.store.GetContactRecord(a.session.Phone)
	if err != nil {
		contact = map[string]string{}
	}

	if stage != nil && strings.TrimSpace(stage.FinalInstructions) != "" {
		text := RenderTemplate(stage.FinalInstructions, a.session.Variables, contact)
		return TruncateAtWhitespace(text, e.cfg.MaxResponseLength), nil
	}

	if e.completion == nil {
		return "", fmt.Errorf("%w: no completion service configured", ErrUnauthorized)
	}

	pc := PromptContext{
		Personality: e.agent.BasePersonality,
		UserMessage: batchText,
		Variables:   a.session.Variables,
	}
	if history, err := e.store.GetRecentMessages(a.session.Phone, e.cfg.HistoryLimit); err == nil {
		for _, msg := range history {
			role := "user"
			if msg.Direction == models.DirectionOutbound {
				role = "assistant"
			}
			pc.History = append(pc.History, HistoryMessage{Role: role, Content: msg.Body})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CompletionTimeout)
	defer cancel()

	text, err := e.completion.GenerateReply(ctx, pc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: completion call", ErrTimeout)
		}
		return "", err
	}
	return TruncateAtWhitespace(strings.TrimSpace(text), e.cfg.MaxResponseLength), nil
}
