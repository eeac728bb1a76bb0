package room

// Broadcaster delivers an event to every connection subscribed to a room.
// Delivery is fire-and-forget: at-most-once, no acknowledgment. Clients
// that miss a broadcast recover via the reconnect snapshot.
type Broadcaster interface {
	Broadcast(roomID string, event string, data interface{})
}

// noopBroadcaster stands in until the gateway registers itself.
type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, string, interface{}) {}
