package handlers

import (
	"errors"
	"net/http"

	"github.com/gamfolz-glitch/pollapp/internal/services"
	"github.com/gamfolz-glitch/pollapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type LiveHandler struct {
	pollService  *services.PollService
	statsService *services.StatsService
	hub          *ws.Hub
}

func NewLiveHandler(pollService *services.PollService, statsService *services.StatsService, hub *ws.Hub) *LiveHandler {
	return &LiveHandler{pollService: pollService, statsService: statsService, hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Snapshot godoc
// @Summary      Live vote counts for a poll
// @Tags         live
// @Produce      json
// @Param        code query string true "Access code"
// @Success      200 {object} services.LiveSnapshot
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/live [get]
func (h *LiveHandler) Snapshot(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "code required"})
		return
	}

	snapshot, err := h.statsService.Live(code)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Stream upgrades to a websocket and pushes a fresh snapshot whenever a
// submission lands. The first message is the current state.
func (h *LiveHandler) Stream(c *gin.Context) {
	poll, err := h.pollService.GetPollByAccessCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.hub.AddConnection(poll.ID, conn)

	if snapshot, err := h.statsService.Live(poll.AccessCode); err == nil {
		_ = conn.WriteJSON(ws.WSMessage{Type: "snapshot", Data: snapshot})
	}

	go func() {
		defer h.hub.RemoveConnection(poll.ID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
