package engine

import (
	"strings"
	"time"
)

// batchSeparator joins buffered messages in arrival order.
const batchSeparator = " "

// collectBatch buffers the first message and every follow-up arriving
// within the debounce window into one batch. Each new message resets the
// window; hitting MaxMessagesPerBatch flushes immediately. With debounce
// disabled, every message is its own one-message batch. Returns false only
// when the actor is stopped mid-buffer.
func (a *actor) collectBatch(first inboundMessage) (string, bool) {
	cfg := a.engine.cfg

	a.session.State = StateBuffering
	a.buffer(first)

	if !cfg.DebounceEnabled {
		return a.flushBatch(), true
	}
	if len(a.session.PendingMessages) >= cfg.MaxMessagesPerBatch {
		return a.flushBatch(), true
	}

	timer := time.NewTimer(cfg.DebounceTime)
	defer timer.Stop()

	for {
		select {
		case <-a.stop:
			return "", false
		case msg := <-a.inbox:
			a.buffer(msg)
			if len(a.session.PendingMessages) >= cfg.MaxMessagesPerBatch {
				return a.flushBatch(), true
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(cfg.DebounceTime)
		case <-timer.C:
			return a.flushBatch(), true
		}
	}
}

func (a *actor) buffer(msg inboundMessage) {
	a.touch()
	a.session.PendingMessages = append(a.session.PendingMessages, PendingMessage{
		Text:       msg.Text,
		ReceivedAt: msg.ReceivedAt,
	})
}

// flushBatch collapses the buffer into a single processing unit and
// transitions the session to PROCESSING.
func (a *actor) flushBatch() string {
	parts := make([]string, 0, len(a.session.PendingMessages))
	for _, pm := range a.session.PendingMessages {
		parts = append(parts, pm.Text)
	}
	a.session.PendingMessages = nil
	a.session.State = StateProcessing
	a.session.LastActivityAt = time.Now()
	return strings.Join(parts, batchSeparator)
}
