package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler upgrades admin requests onto the job feed
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// HandleJobFeed godoc
// @Summary Stream job events
// @Description Upgrades the connection to a WebSocket that receives a JSON JobEvent for every job state change
// @Tags websocket
// @Security BearerAuth
// @Success 101 {object} websocket.JobEvent "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Admin role required"
// @Router /ws/jobs [get]
func (h *Handler) HandleJobFeed(c *gin.Context) {
	subjectID := c.GetString("userID")
	if subjectID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("adminID", subjectID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		subjectID: subjectID,
		logger:    h.logger,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
