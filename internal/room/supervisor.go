package room

import (
	"sync"
	"time"
)

type timerKey struct {
	roomID string
	connID string
}

// Supervisor owns the grace-period eviction timers for disconnected
// players. At most one timer exists per (room, connection) pair; a
// cancelled timer never runs its eviction. The eviction callback itself is
// expected to re-validate room state, so a timer that loses the race with
// Cancel and fires anyway is a no-op at the Manager level too.
type Supervisor struct {
	mu     sync.Mutex
	grace  time.Duration
	timers map[timerKey]*time.Timer
}

func NewSupervisor(grace time.Duration) *Supervisor {
	return &Supervisor{
		grace:  grace,
		timers: make(map[timerKey]*time.Timer),
	}
}

// Schedule arms an eviction timer for the pair, replacing any timer already
// outstanding for it.
func (s *Supervisor) Schedule(roomID, connID string, evict func()) {
	key := timerKey{roomID, connID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(s.grace, func() {
		s.mu.Lock()
		if _, ok := s.timers[key]; !ok {
			// Cancelled between firing and acquiring the lock.
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		evict()
	})
}

// Cancel stops the pending timer for the pair, if any. It reports whether a
// timer was outstanding.
func (s *Supervisor) Cancel(roomID, connID string) bool {
	key := timerKey{roomID, connID}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, key)
	return true
}

// CancelRoom stops every pending timer for a room. Called when a room is
// destroyed so no eviction fires against a vanished room.
func (s *Supervisor) CancelRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		if key.roomID == roomID {
			t.Stop()
			delete(s.timers, key)
		}
	}
}
