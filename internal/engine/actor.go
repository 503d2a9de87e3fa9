package engine

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// inboundMessage is one raw message routed to a session actor.
type inboundMessage struct {
	Text       string
	ReceivedAt time.Time
}

const inboxCapacity = 64

// actor is the single worker that owns one session. All pipeline stages for
// a contact run on this goroutine, so session mutation needs no locking and
// batches for one contact are fully serialized.
type actor struct {
	engine  *Engine
	session *Session

	inbox chan inboundMessage
	stop  chan struct{}
	done  chan struct{}

	stopOnce     sync.Once
	lastActivity atomic.Int64 // unix nanos, read by the manager for eviction
}

func newActor(e *Engine, phone string) *actor {
	a := &actor{
		engine:  e,
		session: newSession(phone),
		inbox:   make(chan inboundMessage, inboxCapacity),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	a.touch()
	return a
}

func (a *actor) touch() {
	a.lastActivity.Store(time.Now().UnixNano())
}

func (a *actor) idleFor() time.Duration {
	return time.Since(time.Unix(0, a.lastActivity.Load()))
}

// deliver hands a message to the actor without blocking the caller.
func (a *actor) deliver(msg inboundMessage) {
	a.touch()
	select {
	case a.inbox <- msg:
	default:
		log.Printf("⚠️  Inbox full for %s, dropping message", a.session.Phone)
	}
}

func (a *actor) halt() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// run is the actor loop: wait for a message, buffer it into a batch, run
// one full pipeline cycle, repeat. Messages arriving mid-cycle queue in the
// inbox and start the next cycle once the current one completes.
func (a *actor) run() {
	defer close(a.done)
	for {
		select {
		case <-a.stop:
			return
		case msg := <-a.inbox:
			batch, ok := a.collectBatch(msg)
			if !ok {
				return
			}
			a.runCycle(batch)
		}
	}
}

// runCycle executes one pipeline cycle for a flushed batch:
// selector -> slot filler -> action executor -> renderer -> dispatcher.
func (a *actor) runCycle(batchText string) {
	e := a.engine
	now := time.Now()

	stages, err := e.store.GetActiveStages(e.agent.AgentID)
	if err != nil {
		log.Printf("Failed to load stages for %s: %v", a.session.Phone, err)
	}

	stage := SelectStage(stages, batchText, a.session, now)
	if stage != nil {
		a.session.ActiveStageID = stage.StageID
		log.Printf("🎯 Stage %q selected for %s", stage.Name, a.session.Phone)
	}

	defer func() {
		armCooldown(a.session, stage, time.Now())
		a.session.ActiveStageID = ""
		a.session.State = StateIdle
		a.session.LastActivityAt = time.Now()
	}()

	if stage != nil {
		if ok := a.fillVariables(stage); !ok {
			return // actor stopped while collecting
		}
		a.executeAction(stage)
	}

	reply, err := a.renderReply(stage, batchText)
	if err != nil {
		log.Printf("❌ Reply generation failed for %s: %v", a.session.Phone, err)
		a.dispatch(FallbackReply)
		return
	}
	if reply == "" {
		return
	}
	a.dispatch(reply)
}
