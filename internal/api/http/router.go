package http

import (
	"github.com/gin-gonic/gin"

	"gomoku-server/internal/api/ws"
	"gomoku-server/internal/room"
)

// NewRouter wires the HTTP surface: the websocket endpoint the game runs
// over, plus read-only listings mirroring the getRooms/getGameRecords
// events, and a health probe.
func NewRouter(hub *ws.Hub, rm *room.Manager) *gin.Engine {
	r := gin.Default()

	r.GET("/ws", hub.HandleWS)
	r.GET("/health", HealthHandler())
	r.GET("/rooms", RoomsHandler(rm))
	r.GET("/records", RecordsHandler(rm))

	return r
}
