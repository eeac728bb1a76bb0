package room

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gomoku-server/internal/archive"
	"gomoku-server/internal/config"
	"gomoku-server/internal/game"
)

// Store is the room registry: id → room. Implemented by store.MemoryStore.
type Store interface {
	GetRoom(id string) (*Room, bool)
	SaveRoom(r *Room)
	DeleteRoom(id string)
	Rooms() []*Room
}

// Manager is the authoritative room state machine. Every mutation runs
// under mu, start to finish, so handlers never observe partial state —
// the Go rendition of a single-threaded event loop. Broadcasts and archive
// appends happen only after the state is fully consistent.
type Manager struct {
	mu      sync.Mutex
	store   Store
	cfg     config.GameConfig
	hub     Broadcaster
	archive *archive.Archive
	sup     *Supervisor
	log     *zap.Logger
}

func NewManager(s Store, cfg config.GameConfig, arc *archive.Archive, log *zap.Logger) *Manager {
	return &Manager{
		store:   s,
		cfg:     cfg,
		hub:     noopBroadcaster{},
		archive: arc,
		sup:     NewSupervisor(cfg.GracePeriod),
		log:     log,
	}
}

// SetBroadcaster wires the session gateway in after construction; the hub
// needs the manager first, so this breaks the chicken-and-egg at startup.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.hub = b
}

// Supervisor exposes the disconnect supervisor for tests.
func (m *Manager) Supervisor() *Supervisor {
	return m.sup
}

// NormalizeID uppercases caller-supplied room ids by convention.
func NormalizeID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}

// RoomView is a room serialized while the manager's mutex is held. The
// bytes are immutable, so the gateway may write them to sockets after the
// lock is released without racing later mutations of the live room.
type RoomView struct {
	ID   string
	Data json.RawMessage
}

// view builds a RoomView. Caller holds m.mu.
func (m *Manager) view(r *Room) RoomView {
	b, err := json.Marshal(r)
	if err != nil {
		m.log.Error("room serialization failed",
			zap.String("room", r.ID),
			zap.Error(err))
	}
	return RoomView{ID: r.ID, Data: b}
}

// CreateRoom creates a room in waiting state with its first player. A
// colliding id is rejected rather than overwritten: the registry is
// strictly first-writer-wins.
func (m *Manager) CreateRoom(connID, roomID, playerName string, preferred game.Color) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID = NormalizeID(roomID)
	if _, ok := m.store.GetRoom(roomID); ok {
		return RoomView{}, ErrRoomAlreadyExists
	}

	color := preferred
	if !color.Valid() {
		color = game.Black
	}
	r := &Room{
		ID:            roomID,
		Players:       []*Player{{ID: connID, Name: playerName, Color: color, Online: true}},
		Spectators:    []*Spectator{},
		Messages:      []ChatMessage{},
		Board:         game.NewBoard(m.cfg.BoardSize),
		CurrentPlayer: game.Black,
		Status:        StatusWaiting,
		StartTime:     time.Now(),
	}
	m.store.SaveRoom(r)
	m.log.Info("room created",
		zap.String("room", roomID),
		zap.String("player", playerName),
		zap.String("color", string(color)))
	return m.view(r), nil
}

// JoinRoom seats the second player and starts the game. Black always moves
// first regardless of join order.
func (m *Manager) JoinRoom(connID, roomID, playerName string, preferred game.Color) (RoomView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return RoomView{}, ErrRoomNotFound
	}
	if len(r.Players) >= 2 {
		return RoomView{}, ErrRoomFull
	}

	// Seated colors stay disjoint: a preference clashing with the first
	// player's color falls back to the opposite.
	color := preferred
	if !color.Valid() || color == r.Players[0].Color {
		color = r.Players[0].Color.Opponent()
	}
	r.Players = append(r.Players, &Player{ID: connID, Name: playerName, Color: color, Online: true})
	r.Status = StatusPlaying
	r.CurrentPlayer = game.Black
	r.WaitingForColorChoice = false
	r.StartTime = time.Now()
	m.store.SaveRoom(r)
	m.log.Info("player joined",
		zap.String("room", r.ID),
		zap.String("player", playerName),
		zap.String("color", string(color)))
	return m.view(r), nil
}

// SpectateResult carries everything the gateway announces for a new or
// renamed spectator. Spectator is a copy, not the seated pointer.
type SpectateResult struct {
	Room           RoomView
	Spectator      Spectator
	SpectatorCount int
}

// JoinAsSpectator adds a spectator, or renames the existing entry when the
// same connection joins again.
func (m *Manager) JoinAsSpectator(connID, roomID, name string) (*SpectateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.playerByID(connID) != nil {
		return nil, ErrAlreadyPlayer
	}

	sp := r.spectatorByID(connID)
	if sp != nil {
		sp.Name = name
	} else {
		sp = &Spectator{ID: connID, Name: name}
		r.Spectators = append(r.Spectators, sp)
	}
	m.store.SaveRoom(r)
	return &SpectateResult{
		Room:           m.view(r),
		Spectator:      *sp,
		SpectatorCount: len(r.Spectators),
	}, nil
}

// Summaries returns the room-list view of every room.
func (m *Manager) Summaries() []Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := m.store.Rooms()
	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, Summary{
			ID:             r.ID,
			PlayerCount:    len(r.Players),
			SpectatorCount: len(r.Spectators),
			Status:         r.Status,
		})
	}
	return out
}

// MakeMove validates and applies one stone placement, evaluates the
// outcome, and broadcasts the resulting delta to the room.
func (m *Manager) MakeMove(roomID string, row, col int, player game.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if player != r.CurrentPlayer {
		return ErrWrongTurn
	}
	if !game.IsLegal(r.Board, row, col) {
		return ErrCellOccupied
	}

	// Snapshot before applying so one pop rewinds exactly this ply.
	r.history = append(r.history, historyEntry{
		board:    r.Board.Clone(),
		lastMove: copyMove(r.LastMove),
		current:  r.CurrentPlayer,
	})

	r.Board[row][col] = player
	r.LastMove = &Move{Row: row, Col: col, Player: player}
	r.CurrentPlayer = player.Opponent()

	if game.CheckWin(r.Board, row, col, player) {
		r.Status = StatusFinished
		r.Winner = string(player)
		r.LastLoser = player.Opponent()
		r.WaitingForColorChoice = true
		m.recordGame(r)
		m.log.Info("game won",
			zap.String("room", r.ID),
			zap.String("winner", string(player)))
	} else if game.CheckDraw(r.Board) {
		r.Status = StatusFinished
		r.Winner = WinnerDraw
		// A draw has no loser and grants no color-swap privilege.
		r.LastLoser = game.Empty
		m.recordGame(r)
		m.log.Info("game drawn", zap.String("room", r.ID))
	}

	m.store.SaveRoom(r)
	m.hub.Broadcast(r.ID, "moveMade", map[string]interface{}{
		"board":         r.Board,
		"lastMove":      r.LastMove,
		"currentPlayer": r.CurrentPlayer,
		"status":        r.Status,
		"winner":        r.Winner,
		"canUndo":       r.CanUndo(),
		"lastLoser":     r.LastLoser,
	})
	return nil
}

// UndoMove rewinds exactly one ply. Either player may invoke it at any
// time, including against the opponent's move; no consent is negotiated.
func (m *Manager) UndoMove(roomID, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	if r.playerByID(connID) == nil {
		return ErrNotAPlayer
	}
	if len(r.history) == 0 {
		return ErrNoHistory
	}

	prev := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.Board = prev.board
	r.LastMove = prev.lastMove
	r.CurrentPlayer = prev.current

	m.store.SaveRoom(r)
	m.hub.Broadcast(r.ID, "moveUndone", map[string]interface{}{
		"board":         r.Board,
		"lastMove":      r.LastMove,
		"currentPlayer": r.CurrentPlayer,
		"canUndo":       r.CanUndo(),
	})
	return nil
}

// Surrender ends the game in the opponent's favor.
func (m *Manager) Surrender(roomID, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	if r.Status != StatusPlaying {
		return ErrNotPlaying
	}
	p := r.playerByID(connID)
	if p == nil {
		return ErrNotAPlayer
	}

	r.Status = StatusFinished
	r.Winner = string(p.Color.Opponent())
	r.Surrendered = true
	r.SurrenderingPlayer = p.Color
	r.LastLoser = p.Color
	r.WaitingForColorChoice = true
	m.recordGame(r)
	m.store.SaveRoom(r)
	m.log.Info("player surrendered",
		zap.String("room", r.ID),
		zap.String("player", p.Name))

	m.hub.Broadcast(r.ID, "gameSurrendered", map[string]interface{}{
		"status":             r.Status,
		"winner":             r.Winner,
		"surrenderingPlayer": r.SurrenderingPlayer,
		"lastLoser":          r.LastLoser,
	})
	return nil
}

// ChooseColor lets the loser of the finished game pick their color for the
// next one; the opponent is assigned the opposite automatically.
func (m *Manager) ChooseColor(roomID, connID string, color game.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	p := r.playerByID(connID)
	if p == nil || !r.WaitingForColorChoice || p.Color != r.LastLoser || !color.Valid() {
		return ErrForbidden
	}
	var other *Player
	for _, q := range r.Players {
		if q.ID != connID {
			other = q
			break
		}
	}
	if other == nil {
		return ErrForbidden
	}

	p.Color = color
	other.Color = color.Opponent()
	r.WaitingForColorChoice = false
	m.store.SaveRoom(r)

	m.hub.Broadcast(r.ID, "colorChosen", map[string]interface{}{
		"players": r.Players,
	})
	return nil
}

// RestartGame resets the board for the same two players, preserving their
// (possibly swapped) colors. Blocked while a color choice is pending.
func (m *Manager) RestartGame(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	if r.WaitingForColorChoice {
		return ErrColorChoicePending
	}

	m.resetGame(r)
	m.store.SaveRoom(r)
	m.hub.Broadcast(r.ID, "gameRestarted", r)
	return nil
}

// RestartWithColor restarts and, when the requester holds the color-swap
// privilege, applies their color choice in the same step.
func (m *Manager) RestartWithColor(roomID, connID string, color game.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return ErrRoomNotFound
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	if r.LastLoser != game.Empty && color.Valid() {
		loser := r.playerByID(connID)
		if loser != nil && loser.Color == r.LastLoser {
			for _, q := range r.Players {
				if q.ID != connID {
					q.Color = color.Opponent()
				}
			}
			loser.Color = color
		}
	}

	m.resetGame(r)
	m.store.SaveRoom(r)
	m.hub.Broadcast(r.ID, "gameRestarted", r)
	return nil
}

func (m *Manager) resetGame(r *Room) {
	r.Board = game.NewBoard(m.cfg.BoardSize)
	r.CurrentPlayer = game.Black
	r.Status = StatusPlaying
	r.LastMove = nil
	r.Winner = ""
	r.history = nil
	r.Surrendered = false
	r.SurrenderingPlayer = game.Empty
	r.WaitingForColorChoice = false
	r.LastLoser = game.Empty
	r.StartTime = time.Now()
}

// SendMessage appends a chat message and trims the log to the most recent
// entries. The sender's role is derived from their seat.
func (m *Manager) SendMessage(roomID, connID, content string) (*ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return nil, ErrRoomNotFound
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || utf8.RuneCountInString(content) > m.cfg.MaxMessageLength {
		return nil, ErrInvalidMessage
	}

	var name, role string
	if p := r.playerByID(connID); p != nil {
		name, role = p.Name, RolePlayer
	} else if s := r.spectatorByID(connID); s != nil {
		name, role = s.Name, RoleSpectator
	} else {
		return nil, ErrNotInRoom
	}

	msg := ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   connID,
		SenderName: name,
		Content:    trimmed,
		Timestamp:  time.Now(),
		Role:       role,
	}
	r.Messages = append(r.Messages, msg)
	if len(r.Messages) > m.cfg.ChatHistoryLimit {
		r.Messages = r.Messages[len(r.Messages)-m.cfg.ChatHistoryLimit:]
	}
	m.store.SaveRoom(r)

	m.hub.Broadcast(r.ID, "messageReceived", msg)
	return &msg, nil
}

// LeaveRoom removes the connection from the room. Removing the last player
// destroys the room immediately; remaining occupants are notified.
func (m *Manager) LeaveRoom(roomID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return
	}
	m.removeOccupant(r, connID)
}

// removeOccupant removes a player or spectator. Caller holds m.mu.
func (m *Manager) removeOccupant(r *Room, connID string) {
	for i, p := range r.Players {
		if p.ID != connID {
			continue
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		m.sup.Cancel(r.ID, connID)
		if len(r.Players) == 0 {
			m.destroyRoom(r)
			return
		}
		m.store.SaveRoom(r)
		m.hub.Broadcast(r.ID, "playerLeft", map[string]interface{}{
			"playerId":   connID,
			"playerName": p.Name,
		})
		return
	}
	for i, s := range r.Spectators {
		if s.ID != connID {
			continue
		}
		r.Spectators = append(r.Spectators[:i], r.Spectators[i+1:]...)
		m.store.SaveRoom(r)
		m.hub.Broadcast(r.ID, "spectatorLeft", map[string]interface{}{
			"spectatorId":    connID,
			"spectatorCount": len(r.Spectators),
		})
		return
	}
}

func (m *Manager) destroyRoom(r *Room) {
	m.sup.CancelRoom(r.ID)
	m.store.DeleteRoom(r.ID)
	m.log.Info("room destroyed", zap.String("room", r.ID))
}

// ReconnectResult tells the gateway what was rebound.
type ReconnectResult struct {
	Room   RoomView
	Role   string
	ConnID string
	Name   string
}

// Reconnect rebinds a returning occupant by display name: connection ids
// are ephemeral and change across reconnects. A returning player cancels
// their pending eviction timer and comes back online.
func (m *Manager) Reconnect(connID, roomID, playerName string) (*ReconnectResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(NormalizeID(roomID))
	if !ok {
		return nil, ErrRoomNotFound
	}

	if p := r.playerByName(playerName); p != nil {
		m.sup.Cancel(r.ID, p.ID)
		p.ID = connID
		p.Online = true
		m.store.SaveRoom(r)
		m.log.Info("player reconnected",
			zap.String("room", r.ID),
			zap.String("player", playerName))
		return &ReconnectResult{Room: m.view(r), Role: RolePlayer, ConnID: connID, Name: p.Name}, nil
	}
	if s := r.spectatorByName(playerName); s != nil {
		s.ID = connID
		m.store.SaveRoom(r)
		return &ReconnectResult{Room: m.view(r), Role: RoleSpectator, ConnID: connID, Name: s.Name}, nil
	}
	return nil, ErrNoMatchingRecord
}

// HandleDisconnect reacts to an underlying connection closing. Players are
// marked offline and given a grace period before eviction; spectators are
// removed immediately.
func (m *Manager) HandleDisconnect(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.store.Rooms() {
		if p := r.playerByID(connID); p != nil {
			p.Online = false
			m.store.SaveRoom(r)
			m.hub.Broadcast(r.ID, "playerDisconnected", map[string]interface{}{
				"playerId":   connID,
				"playerName": p.Name,
			})
			roomID := r.ID
			m.sup.Schedule(roomID, connID, func() {
				m.evictIfStillOffline(roomID, connID)
			})
			m.log.Info("player disconnected, grace period started",
				zap.String("room", roomID),
				zap.String("player", p.Name),
				zap.Duration("grace", m.cfg.GracePeriod))
			return
		}
		if r.spectatorByID(connID) != nil {
			m.removeOccupant(r, connID)
			return
		}
	}
}

// evictIfStillOffline runs when a grace timer fires. The room or player may
// have changed since the timer was armed (deliberate leave, reconnect under
// a new connection id, room destroyed); any mismatch makes this a no-op.
func (m *Manager) evictIfStillOffline(roomID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.GetRoom(roomID)
	if !ok {
		return
	}
	p := r.playerByID(connID)
	if p == nil || p.Online {
		return
	}
	m.log.Info("grace period expired, evicting player",
		zap.String("room", roomID),
		zap.String("player", p.Name))
	m.removeOccupant(r, connID)
}

// recordGame archives a concluded game. Caller holds m.mu and has already
// set the terminal fields on the room.
func (m *Manager) recordGame(r *Room) {
	players := make([]archive.RecordPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, archive.RecordPlayer{Name: p.Name, Color: string(p.Color)})
	}
	moves := make([]archive.RecordMove, 0, len(r.history)+1)
	for _, h := range r.history {
		if h.lastMove == nil {
			continue
		}
		moves = append(moves, archive.RecordMove{
			MoveNumber: len(moves) + 1,
			Row:        h.lastMove.Row,
			Col:        h.lastMove.Col,
			Player:     string(h.lastMove.Player),
		})
	}
	if r.LastMove != nil {
		moves = append(moves, archive.RecordMove{
			MoveNumber: len(moves) + 1,
			Row:        r.LastMove.Row,
			Col:        r.LastMove.Col,
			Player:     string(r.LastMove.Player),
		})
	}
	m.archive.Record(archive.Record{
		ID:                 uuid.NewString(),
		RoomID:             r.ID,
		StartTime:          r.StartTime,
		EndTime:            time.Now(),
		Players:            players,
		Winner:             r.Winner,
		Surrendered:        r.Surrendered,
		SurrenderingPlayer: string(r.SurrenderingPlayer),
		Moves:              moves,
	})
}

// Records returns the most recent archived games, newest first.
func (m *Manager) Records() []archive.Record {
	return m.archive.ListRecent(m.cfg.RecordListLimit)
}

func copyMove(mv *Move) *Move {
	if mv == nil {
		return nil
	}
	c := *mv
	return &c
}
