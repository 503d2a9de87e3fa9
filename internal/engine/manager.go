package engine

import (
	"log"
	"sync"
	"time"
)

const cleanupInterval = time.Minute

// SessionManager owns one actor per contact and routes inbound messages to
// them. Sessions across contacts run fully in parallel; the manager never
// touches a session's state, only the actor's mailbox and lifecycle.
type SessionManager struct {
	engine *Engine
	actors map[string]*actor
	mu     sync.RWMutex

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func newSessionManager(e *Engine) *SessionManager {
	return &SessionManager{
		engine:      e,
		actors:      make(map[string]*actor),
		stopCleanup: make(chan struct{}),
	}
}

func (sm *SessionManager) start() {
	go sm.cleanupIdleSessions()
}

// deliver routes a message to the contact's actor, creating the session on
// the first inbound message.
func (sm *SessionManager) deliver(phone, text string, receivedAt time.Time) {
	sm.mu.RLock()
	act, exists := sm.actors[phone]
	sm.mu.RUnlock()

	if !exists {
		sm.mu.Lock()
		act, exists = sm.actors[phone]
		if !exists {
			act = newActor(sm.engine, phone)
			sm.actors[phone] = act
			go act.run()
			log.Printf("Session created for %s", phone)
		}
		sm.mu.Unlock()
	}

	act.deliver(inboundMessage{Text: text, ReceivedAt: receivedAt})
}

// cleanupIdleSessions runs periodically and evicts sessions idle past the
// configured TTL. A session has no terminal state; it persists across
// cycles until evicted here.
func (sm *SessionManager) cleanupIdleSessions() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stopCleanup:
			return
		case <-ticker.C:
			ttl := sm.engine.cfg.SessionTTL
			var evicted []*actor

			sm.mu.Lock()
			for phone, act := range sm.actors {
				if act.idleFor() > ttl {
					delete(sm.actors, phone)
					evicted = append(evicted, act)
				}
			}
			sm.mu.Unlock()

			for _, act := range evicted {
				act.halt()
				log.Printf("Session evicted for %s after %v idle", act.session.Phone, ttl)
			}
		}
	}
}

// SessionStats provides session statistics for monitoring
type SessionStats struct {
	ActiveSessions     int     `json:"active_sessions"`
	AverageIdleMinutes float64 `json:"average_idle_minutes"`
}

func (sm *SessionManager) stats() *SessionStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats := &SessionStats{ActiveSessions: len(sm.actors)}
	total := 0.0
	for _, act := range sm.actors {
		total += act.idleFor().Minutes()
	}
	if len(sm.actors) > 0 {
		stats.AverageIdleMinutes = total / float64(len(sm.actors))
	}
	return stats
}

// shutdown stops the cleanup routine and every actor, waiting for their
// goroutines to exit.
func (sm *SessionManager) shutdown() {
	sm.stopOnce.Do(func() { close(sm.stopCleanup) })

	sm.mu.Lock()
	actors := make([]*actor, 0, len(sm.actors))
	for phone, act := range sm.actors {
		actors = append(actors, act)
		delete(sm.actors, phone)
	}
	sm.mu.Unlock()

	for _, act := range actors {
		act.halt()
		<-act.done
	}
}
