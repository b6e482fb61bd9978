// Package progress broadcasts activity lifecycle events to connected
// WebSocket clients so the UI can show long-running work such as sync
// batches or cache reloads.
package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/profilarr/profilarr/internal/websocket"
)

// ActivityType identifies the kind of activity being tracked.
type ActivityType string

const (
	ActivitySync        ActivityType = "sync"
	ActivityCacheReload ActivityType = "cache-reload"
)

// Status represents the current state of an activity.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Activity is one trackable unit of work.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	Progress    int          `json:"progress"` // 0-100, -1 for indeterminate
	Status      Status       `json:"status"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// EventType identifies the event emitted for an activity transition.
type EventType string

const (
	EventStarted   EventType = "progress:started"
	EventUpdate    EventType = "progress:update"
	EventCompleted EventType = "progress:completed"
	EventError     EventType = "progress:error"
)

// Manager tracks and broadcasts progress for all activities.
type Manager struct {
	hub        *websocket.Hub
	activities map[string]*Activity
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewManager creates a progress manager. The hub may be nil, in which case
// activities are tracked but nothing is broadcast.
func NewManager(hub *websocket.Hub, logger zerolog.Logger) *Manager {
	return &Manager{
		hub:        hub,
		activities: make(map[string]*Activity),
		logger:     logger.With().Str("component", "progress").Logger(),
	}
}

// Start begins tracking a new activity. Restarting a live id replaces it.
func (m *Manager) Start(id string, activityType ActivityType, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity := &Activity{
		ID:        id,
		Type:      activityType,
		Title:     title,
		Progress:  -1,
		Status:    StatusInProgress,
		StartedAt: time.Now(),
	}
	m.activities[id] = activity
	m.broadcast(EventStarted, activity)

	m.logger.Debug().
		Str("id", id).
		Str("type", string(activityType)).
		Msg("Activity started")
}

// Update sets an activity's subtitle and completion percentage.
func (m *Manager) Update(id, subtitle string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, exists := m.activities[id]
	if !exists {
		return
	}
	activity.Subtitle = subtitle
	activity.Progress = progress
	m.broadcast(EventUpdate, activity)
}

// Complete marks an activity as finished.
func (m *Manager) Complete(id, subtitle string) {
	m.finish(id, StatusCompleted, subtitle, EventCompleted)
}

// Fail marks an activity as failed.
func (m *Manager) Fail(id, errorMsg string) {
	m.finish(id, StatusFailed, errorMsg, EventError)
}

func (m *Manager) finish(id string, status Status, subtitle string, event EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, exists := m.activities[id]
	if !exists {
		return
	}
	now := time.Now()
	activity.Status = status
	activity.Subtitle = subtitle
	activity.CompletedAt = &now
	if status == StatusCompleted {
		activity.Progress = 100
	}
	m.broadcast(event, activity)

	// Keep the terminal state visible briefly, then drop it
	go func() {
		time.Sleep(10 * time.Second)
		m.mu.Lock()
		if a := m.activities[id]; a == activity {
			delete(m.activities, id)
		}
		m.mu.Unlock()
	}()

	m.logger.Debug().
		Str("id", id).
		Str("status", string(status)).
		Msg("Activity finished")
}

// Activities returns a snapshot of every tracked activity.
func (m *Manager) Activities() []*Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Activity, 0, len(m.activities))
	for _, activity := range m.activities {
		result = append(result, activity)
	}
	return result
}

func (m *Manager) broadcast(eventType EventType, activity *Activity) {
	if m.hub == nil {
		return
	}
	m.hub.Broadcast(string(eventType), activity)
}
