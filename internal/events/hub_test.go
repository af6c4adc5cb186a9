package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_FanOut(t *testing.T) {
	h := NewHub()
	a, b := h.Subscribe(), h.Subscribe()
	require.Equal(t, 2, h.Clients())

	h.Emit("req-1", "run-1", CrawlPage, map[string]int{"page": 3})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		assert.Equal(t, CrawlPage, e.Type)
		assert.Equal(t, Version, e.Version)
		assert.Equal(t, "req-1", e.RequestID)
		assert.Equal(t, "run-1", e.RunID)
		assert.JSONEq(t, `{"page":3}`, string(e.Data))
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Clients())
	_, open := <-a
	assert.False(t, open)
}

func TestHub_SlowClientDrops(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < clientBuffer+5; i++ {
		h.Publish("x")
	}
	assert.Len(t, ch, clientBuffer)
	assert.Equal(t, 5, h.Dropped())
}

func TestHub_NilIsNoop(t *testing.T) {
	var h *Hub
	h.Emit("", "", Ping, nil)
	h.Publish("x")
}
