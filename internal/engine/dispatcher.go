package engine

import (
	"log"
	"math/rand"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/models"
)

// dispatch splits the reply into bounded chunks and paces delivery with
// inter-chunk delay. The job runs to completion: inbound batches arriving
// meanwhile queue in the inbox rather than interrupting an in-flight
// sequence.
func (a *actor) dispatch(text string) {
	e := a.engine
	a.session.State = StateDispatching

	chunks := SplitChunks(text, e.cfg.ChunkSize)
	for i, chunk := range chunks {
		if i > 0 {
			if !a.pause(a.chunkDelay()) {
				return
			}
		}
		if err := e.transport.SendChunk(a.session.Phone, chunk); err != nil {
			log.Printf("❌ Failed to send chunk %d/%d to %s: %v", i+1, len(chunks), a.session.Phone, err)
		}
		e.logMessage(a.session.Phone, models.DirectionOutbound, chunk, time.Now())
	}
}

// chunkDelay returns the wait before the next chunk: fixed, or sampled
// uniformly from [MinDelay, MaxDelay] when random delay is enabled.
func (a *actor) chunkDelay() time.Duration {
	cfg := a.engine.cfg
	if !cfg.RandomDelayEnabled {
		return cfg.ChunkDelay
	}
	spread := cfg.MaxDelay - cfg.MinDelay
	if spread <= 0 {
		return cfg.MinDelay
	}
	return cfg.MinDelay + time.Duration(rand.Int63n(int64(spread)+1))
}

// pause waits without blocking actor shutdown.
func (a *actor) pause(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-a.stop:
		return false
	case <-timer.C:
		return true
	}
}
