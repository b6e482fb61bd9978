package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilarr/profilarr/internal/logger"
)

// The hub is the broadcaster the streaming logger writes to.
var _ logger.Broadcaster = (*Hub)(nil)

func TestBroadcastQueuesEnvelope(t *testing.T) {
	hub := NewHub()

	require.NoError(t, hub.Broadcast("sync:started", map[string]string{"batch": "abc"}))

	select {
	case data := <-hub.broadcast:
		assert.Contains(t, string(data), `"type":"sync:started"`)
		assert.Contains(t, string(data), `"batch":"abc"`)
	default:
		t.Fatal("no message queued")
	}
}

func TestBroadcastRejectsUnmarshalablePayload(t *testing.T) {
	hub := NewHub()

	err := hub.Broadcast("sync:started", func() {})
	assert.Error(t, err)
	assert.Zero(t, len(hub.broadcast))
}
