package logger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHub struct {
	types    []string
	payloads []interface{}
}

func (h *captureHub) Broadcast(msgType string, payload interface{}) error {
	h.types = append(h.types, msgType)
	h.payloads = append(h.payloads, payload)
	return nil
}

func TestLogBroadcasterParsesEntries(t *testing.T) {
	hub := &captureHub{}
	b := NewLogBroadcaster(hub, 10)

	line := `{"time":"2026-01-02T03:04:05Z","level":"info","component":"arrsync","message":"done","config":"radarr-main"}`
	n, err := b.Write([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)

	require.Len(t, hub.types, 1)
	assert.Equal(t, "logs:entry", hub.types[0])

	entry, ok := hub.payloads[0].(LogEntry)
	require.True(t, ok)
	assert.Equal(t, "2026-01-02T03:04:05Z", entry.Timestamp)
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "arrsync", entry.Component)
	assert.Equal(t, "done", entry.Message)
	assert.Equal(t, map[string]any{"config": "radarr-main"}, entry.Fields)
}

func TestLogBroadcasterIgnoresMalformedLines(t *testing.T) {
	hub := &captureHub{}
	b := NewLogBroadcaster(hub, 10)

	_, err := b.Write([]byte("plain text, not json"))
	require.NoError(t, err)
	assert.Empty(t, hub.types)
	assert.Empty(t, b.GetRecentLogs())
}

func TestLogBroadcasterBufferWraps(t *testing.T) {
	b := NewLogBroadcaster(nil, 3)

	for i := 0; i < 5; i++ {
		line := fmt.Sprintf(`{"level":"info","message":"entry %d"}`, i)
		_, err := b.Write([]byte(line))
		require.NoError(t, err)
	}

	logs := b.GetRecentLogs()
	require.Len(t, logs, 3)
	assert.Equal(t, "entry 2", logs[0].Message)
	assert.Equal(t, "entry 4", logs[2].Message)
}

func TestLogBroadcasterHubAttachedLate(t *testing.T) {
	b := NewLogBroadcaster(nil, 10)
	_, err := b.Write([]byte(`{"level":"info","message":"early"}`))
	require.NoError(t, err)

	hub := &captureHub{}
	b.SetHub(hub)
	_, err = b.Write([]byte(`{"level":"info","message":"late"}`))
	require.NoError(t, err)

	require.Len(t, hub.types, 1, "only entries after attach are pushed")
	logs := b.GetRecentLogs()
	require.Len(t, logs, 2, "but the buffer kept both")
	assert.Equal(t, "early", logs[0].Message)
}
