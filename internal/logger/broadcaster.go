package logger

import (
	"encoding/json"
	"sync"
)

const defaultBufferSize = 1000

// Broadcaster pushes typed messages to connected websocket clients. Declared
// here so the logger does not import the websocket package.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// LogEntry is one structured log line as served to the UI: the well-known
// zerolog keys lifted out, everything else collected under Fields.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LogBroadcaster is an io.Writer sitting in the zerolog writer chain. Every
// entry lands in a bounded replay buffer and, once a hub is attached, is
// pushed to websocket clients as a "logs:entry" message.
type LogBroadcaster struct {
	mu      sync.RWMutex
	hub     Broadcaster
	entries []LogEntry
	next    int
	wrapped bool
}

// NewLogBroadcaster creates a broadcaster holding the last size entries.
// The hub may be nil; the buffer fills either way and the hub can be
// attached later with SetHub.
func NewLogBroadcaster(hub Broadcaster, size int) *LogBroadcaster {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &LogBroadcaster{
		hub:     hub,
		entries: make([]LogEntry, size),
	}
}

// SetHub attaches the websocket hub. Entries written before this point stay
// replayable through GetRecentLogs.
func (b *LogBroadcaster) SetHub(hub Broadcaster) {
	b.mu.Lock()
	b.hub = hub
	b.mu.Unlock()
}

// Write accepts one JSON-encoded zerolog line. Lines that do not parse are
// dropped without failing the writer chain.
func (b *LogBroadcaster) Write(p []byte) (int, error) {
	entry, ok := parseEntry(p)
	if !ok {
		return len(p), nil
	}

	b.mu.Lock()
	b.entries[b.next] = entry
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.wrapped = true
	}
	hub := b.hub
	b.mu.Unlock()

	if hub != nil {
		// A send failure never fails the log write itself.
		_ = hub.Broadcast("logs:entry", entry)
	}
	return len(p), nil
}

// GetRecentLogs returns the buffered entries, oldest first.
func (b *LogBroadcaster) GetRecentLogs() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.wrapped {
		out := make([]LogEntry, b.next)
		copy(out, b.entries[:b.next])
		return out
	}
	out := make([]LogEntry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	out = append(out, b.entries[:b.next]...)
	return out
}

// parseEntry lifts the well-known zerolog keys out of a JSON log line and
// keeps the remainder as loose fields.
func parseEntry(data []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, false
	}

	var entry LogEntry
	if v, ok := raw["time"].(string); ok {
		entry.Timestamp = v
		delete(raw, "time")
	}
	if v, ok := raw["level"].(string); ok {
		entry.Level = v
		delete(raw, "level")
	}
	if v, ok := raw["component"].(string); ok {
		entry.Component = v
		delete(raw, "component")
	}
	if v, ok := raw["message"].(string); ok {
		entry.Message = v
		delete(raw, "message")
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}
