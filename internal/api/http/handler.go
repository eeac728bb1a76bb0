package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gomoku-server/internal/room"
)

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// RoomsHandler lists room summaries, the same view the getRooms event
// returns over the socket.
func RoomsHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rm.Summaries()})
	}
}

// RecordsHandler lists recently archived games, most recent first.
func RecordsHandler(rm *room.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"records": rm.Records()})
	}
}
