// Package archive keeps an append-only, in-memory log of completed games.
// Records survive for the process lifetime only; durable storage is
// deliberately out of scope.
package archive

import (
	"sync"
	"time"
)

// RecordPlayer is a participant snapshot at game end.
type RecordPlayer struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RecordMove is one archived ply.
type RecordMove struct {
	MoveNumber int    `json:"moveNumber"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Player     string `json:"player"`
}

// Record is an immutable snapshot written once per concluded game.
type Record struct {
	ID                 string         `json:"id"`
	RoomID             string         `json:"roomId"`
	StartTime          time.Time      `json:"startTime"`
	EndTime            time.Time      `json:"endTime"`
	Players            []RecordPlayer `json:"players"`
	Winner             string         `json:"winner"`
	Surrendered        bool           `json:"surrendered,omitempty"`
	SurrenderingPlayer string         `json:"surrenderingPlayer,omitempty"`
	Moves              []RecordMove   `json:"moves"`
}

// Archive holds every record appended during the process lifetime.
type Archive struct {
	mu      sync.RWMutex
	records []Record
}

func New() *Archive {
	return &Archive{}
}

// Record appends. It always succeeds.
func (a *Archive) Record(rec Record) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
}

// Len reports the number of archived games.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// ListRecent returns up to limit records, most recent first, without
// mutating the archive.
func (a *Archive) ListRecent(limit int) []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := len(a.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := len(a.records) - 1; i >= len(a.records)-n; i-- {
		out = append(out, a.records[i])
	}
	return out
}
