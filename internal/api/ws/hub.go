package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gomoku-server/internal/game"
	"gomoku-server/internal/room"
)

const maxMessageSize = 16 * 1024

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins
	},
}

// client is one websocket connection. Writes are serialized per client;
// gorilla connections do not allow concurrent writers.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(event string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteJSON(map[string]interface{}{
		"event": event,
		"data":  data,
	})
}

func (c *client) sendError(err error) {
	c.send("error", map[string]interface{}{"message": err.Error()})
}

// Hub is the session gateway: it owns every connection, the per-room
// subscriber sets, and the inbound event dispatch. It implements
// room.Broadcaster; a broadcast is an iteration over a subscriber set.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*client]struct{}
	manager *room.Manager
	log     *zap.Logger
}

func NewHub(m *room.Manager, log *zap.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*client]struct{}),
		manager: m,
		log:     log,
	}
}

// Broadcast sends an event to every connection subscribed to the room.
// Fire-and-forget: a failed write closes nothing and retries nothing.
func (h *Hub) Broadcast(roomID string, event string, data interface{}) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.send(event, data)
	}
}

// subscribe adds the connection to a room channel. Memberships are
// additive, socket.io style: joining a second room keeps the first alive.
func (h *Hub) subscribe(c *client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
}

// leave removes the connection from a single room channel.
func (h *Hub) leave(c *client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.rooms, roomID)
	}
}

// unsubscribe removes the connection from every room channel; used when
// the underlying connection closes.
func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.rooms {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, id)
		}
	}
}

// HandleWS upgrades the connection and runs its read loop until the client
// goes away. Connection ids are ephemeral; reconnecting clients are matched
// by display name, not id.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	cl := &client{id: uuid.NewString(), conn: conn}
	h.log.Info("connection established", zap.String("conn", cl.id))

	defer func() {
		h.unsubscribe(cl)
		_ = conn.Close()
		h.manager.HandleDisconnect(cl.id)
		h.log.Info("connection closed", zap.String("conn", cl.id))
	}()

	for {
		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("read error", zap.String("conn", cl.id), zap.Error(err))
			}
			return
		}
		h.dispatch(cl, env.Event, env.Data)
	}
}

func (h *Hub) dispatch(c *client, event string, data json.RawMessage) {
	switch event {
	case EventCreateRoom:
		var req createRoomRequest
		if !h.bind(c, data, &req) {
			return
		}
		v, err := h.manager.CreateRoom(c.id, req.RoomID, req.PlayerName, game.Color(req.PreferredColor))
		if err != nil {
			c.sendError(err)
			return
		}
		h.subscribe(c, v.ID)
		c.send("roomCreated", v.Data)
		h.Broadcast(v.ID, "roomUpdated", v.Data)

	case EventJoinRoom:
		var req createRoomRequest
		if !h.bind(c, data, &req) {
			return
		}
		v, err := h.manager.JoinRoom(c.id, req.RoomID, req.PlayerName, game.Color(req.PreferredColor))
		if err != nil {
			c.sendError(err)
			return
		}
		h.subscribe(c, v.ID)
		c.send("roomJoined", v.Data)
		h.Broadcast(v.ID, "roomUpdated", v.Data)

	case EventJoinAsSpectator:
		var req spectateRequest
		if !h.bind(c, data, &req) {
			return
		}
		res, err := h.manager.JoinAsSpectator(c.id, req.RoomID, req.SpectatorName)
		if err != nil {
			c.sendError(err)
			return
		}
		h.subscribe(c, res.Room.ID)
		c.send("spectatorJoined", map[string]interface{}{
			"room":        res.Room.Data,
			"spectatorId": res.Spectator.ID,
		})
		h.Broadcast(res.Room.ID, "spectatorJoined", map[string]interface{}{
			"spectator":      res.Spectator,
			"spectatorCount": res.SpectatorCount,
		})

	case EventGetRooms:
		c.send("roomsList", h.manager.Summaries())

	case EventMakeMove:
		var req moveRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.MakeMove(req.RoomID, req.Row, req.Col, game.Color(req.Player)); err != nil {
			c.sendError(err)
		}

	case EventUndoMove:
		var req roomRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.UndoMove(req.RoomID, c.id); err != nil {
			c.sendError(err)
		}

	case EventSurrender:
		var req roomRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.Surrender(req.RoomID, c.id); err != nil {
			c.sendError(err)
		}

	case EventChooseColor:
		var req colorRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.ChooseColor(req.RoomID, c.id, game.Color(req.Color)); err != nil {
			c.sendError(err)
		}

	case EventRestartGame:
		var req roomRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.RestartGame(req.RoomID); err != nil {
			c.sendError(err)
		}

	case EventRestartWithColor:
		var req colorRequest
		if !h.bind(c, data, &req) {
			return
		}
		if err := h.manager.RestartWithColor(req.RoomID, c.id, game.Color(req.Color)); err != nil {
			c.sendError(err)
		}

	case EventGetGameRecords:
		c.send("gameRecords", h.manager.Records())

	case EventReconnect:
		var req reconnectRequest
		if !h.bind(c, data, &req) {
			return
		}
		res, err := h.manager.Reconnect(c.id, req.RoomID, req.PlayerName)
		if err != nil {
			c.sendError(err)
			return
		}
		h.subscribe(c, res.Room.ID)
		if res.Role == room.RolePlayer {
			c.send("roomReconnected", res.Room.Data)
			h.Broadcast(res.Room.ID, "playerReconnected", map[string]interface{}{
				"playerId":   res.ConnID,
				"playerName": res.Name,
			})
		} else {
			c.send("spectatorReconnected", res.Room.Data)
		}

	case EventSendMessage:
		var req messageRequest
		if !h.bind(c, data, &req) {
			return
		}
		if _, err := h.manager.SendMessage(req.RoomID, c.id, req.Content); err != nil {
			c.sendError(err)
		}

	case EventLeaveRoom:
		var req roomRequest
		if !h.bind(c, data, &req) {
			return
		}
		h.leave(c, room.NormalizeID(req.RoomID))
		h.manager.LeaveRoom(req.RoomID, c.id)

	default:
		h.log.Warn("unknown event",
			zap.String("conn", c.id),
			zap.String("event", event))
	}
}

func (h *Hub) bind(c *client, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		h.log.Warn("invalid payload", zap.String("conn", c.id), zap.Error(err))
		c.send("error", map[string]interface{}{"message": "invalid payload"})
		return false
	}
	return true
}
