package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func (h *Hub) subscribed(c *client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][c]
	return ok
}

func TestRoomMembershipIsAdditive(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	c := &client{id: "c1"}

	h.subscribe(c, "A")
	h.subscribe(c, "B")
	assert.True(t, h.subscribed(c, "A"), "joining a second room keeps the first")
	assert.True(t, h.subscribed(c, "B"))

	h.leave(c, "A")
	assert.False(t, h.subscribed(c, "A"))
	assert.True(t, h.subscribed(c, "B"), "leave is scoped to one room")

	// Leaving a room the connection never joined is a no-op.
	h.leave(c, "C")
	assert.True(t, h.subscribed(c, "B"))
}

func TestUnsubscribeClearsAllRooms(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	c1 := &client{id: "c1"}
	c2 := &client{id: "c2"}

	h.subscribe(c1, "A")
	h.subscribe(c1, "B")
	h.subscribe(c2, "A")

	h.unsubscribe(c1)
	assert.False(t, h.subscribed(c1, "A"))
	assert.False(t, h.subscribed(c1, "B"))
	assert.True(t, h.subscribed(c2, "A"), "other connections are untouched")

	// Emptied channels are dropped entirely.
	h.mu.RLock()
	_, ok := h.rooms["B"]
	h.mu.RUnlock()
	assert.False(t, ok)
}
