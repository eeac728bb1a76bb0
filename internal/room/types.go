package room

import (
	"encoding/json"
	"time"

	"gomoku-server/internal/game"
)

// Status is the room lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Winner values are the winning color, or "draw".
const WinnerDraw = "draw"

// Player is a seated occupant. ID is the current connection id and is
// rebound on reconnect; Name is the stable identity used for matching.
type Player struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Color  game.Color `json:"color"`
	Online bool       `json:"isOnline"`
}

// Spectator is a non-playing occupant. Spectators never affect game state.
type Spectator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Move is a single stone placement.
type Move struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Player game.Color `json:"player"`
}

// ChatMessage is one room chat entry. Role is "player" or "spectator".
type ChatMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Role       string    `json:"type"`
}

const (
	RolePlayer    = "player"
	RoleSpectator = "spectator"
)

// historyEntry snapshots the state immediately before a move was applied.
// Popping one entry rewinds exactly one ply.
type historyEntry struct {
	board    game.Board
	lastMove *Move
	current  game.Color
}

// Room is the aggregate root for one game session. All fields are guarded
// by the Manager's mutex; the room itself carries no locking.
type Room struct {
	ID                    string        `json:"id"`
	Players               []*Player     `json:"players"`
	Spectators            []*Spectator  `json:"spectators"`
	Messages              []ChatMessage `json:"messages"`
	Board                 game.Board    `json:"board"`
	CurrentPlayer         game.Color    `json:"currentPlayer"`
	Status                Status        `json:"status"`
	LastMove              *Move         `json:"lastMove"`
	Winner                string        `json:"winner,omitempty"`
	LastLoser             game.Color    `json:"lastLoser,omitempty"`
	Surrendered           bool          `json:"surrendered,omitempty"`
	SurrenderingPlayer    game.Color    `json:"surrenderingPlayer,omitempty"`
	WaitingForColorChoice bool          `json:"waitingForColorChoice"`
	StartTime             time.Time     `json:"startTime"`

	history []historyEntry
}

// CanUndo reports whether at least one ply can be rewound.
func (r *Room) CanUndo() bool {
	return len(r.history) > 0
}

// MarshalJSON includes the derived undo-availability flag so that full-room
// snapshots (reconnect, restart) carry it without storing derived state.
func (r *Room) MarshalJSON() ([]byte, error) {
	type alias Room
	return json.Marshal(struct {
		*alias
		CanUndo bool `json:"canUndo"`
	}{(*alias)(r), r.CanUndo()})
}

func (r *Room) playerByID(connID string) *Player {
	for _, p := range r.Players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) spectatorByID(connID string) *Spectator {
	for _, s := range r.Spectators {
		if s.ID == connID {
			return s
		}
	}
	return nil
}

func (r *Room) spectatorByName(name string) *Spectator {
	for _, s := range r.Spectators {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Summary is the room-list view: identity and occupancy only.
type Summary struct {
	ID             string `json:"id"`
	PlayerCount    int    `json:"playerCount"`
	SpectatorCount int    `json:"spectatorCount"`
	Status         Status `json:"status"`
}
