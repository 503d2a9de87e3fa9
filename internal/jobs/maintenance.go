package jobs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/zapfunnel/zapfunnel-backend/internal/engine"
	"github.com/zapfunnel/zapfunnel-backend/internal/storage"
)

const defaultMessageRetentionDays = 90

// MaintenanceJob runs the engine's background housekeeping: conversation
// log retention and periodic session stats logging.
type MaintenanceJob struct {
	store     storage.Store
	engine    *engine.Engine
	isRunning bool
}

// NewMaintenanceJob creates a new maintenance job scheduler
func NewMaintenanceJob(store storage.Store, eng *engine.Engine) *MaintenanceJob {
	return &MaintenanceJob{
		store:  store,
		engine: eng,
	}
}

// Start begins all scheduled maintenance jobs
func (m *MaintenanceJob) Start() {
	if m.isRunning {
		log.Println("Maintenance jobs already running")
		return
	}
	m.isRunning = true
	log.Println("Starting scheduled maintenance jobs...")

	go m.scheduleMessageRetention()
	go m.scheduleSessionStatsLog()
}

// Stop halts all scheduled jobs
func (m *MaintenanceJob) Stop() {
	m.isRunning = false
	log.Println("Stopping scheduled maintenance jobs...")
}

// scheduleMessageRetention trims the conversation log hourly
func (m *MaintenanceJob) scheduleMessageRetention() {
	retentionDays := defaultMessageRetentionDays
	if raw := os.Getenv("MESSAGE_RETENTION_DAYS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}

	for m.isRunning {
		time.Sleep(time.Hour)
		if !m.isRunning {
			break
		}

		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		removed, err := m.store.DeleteMessagesBefore(cutoff)
		if err != nil {
			log.Printf("Error trimming conversation log: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("🧹 Trimmed %d conversation messages older than %d days", removed, retentionDays)
		}
	}
}

// scheduleSessionStatsLog logs active session counts every 15 minutes
func (m *MaintenanceJob) scheduleSessionStatsLog() {
	for m.isRunning {
		time.Sleep(15 * time.Minute)
		if !m.isRunning {
			break
		}

		stats := m.engine.Stats()
		log.Printf("📊 Sessions: %d active, average idle %.1f minutes",
			stats.ActiveSessions, stats.AverageIdleMinutes)
	}
}
