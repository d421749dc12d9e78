package handlers

import (
	"net/http"
	"strconv"

	"github.com/gamfolz-glitch/pollapp/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	pollService  *services.PollService
	statsService *services.StatsService
}

func NewStatsHandler(pollService *services.PollService, statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{pollService: pollService, statsService: statsService}
}

// Stats godoc
// @Summary      Per-question tallies for a poll
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Poll ID"
// @Success      200 {object} services.PollStats
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id}/stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	userID := c.GetUint("user_id")
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	if _, err := h.pollService.GetPollByID(uint(pollID), userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	stats, err := h.statsService.Stats(uint(pollID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Responses godoc
// @Summary      Per-submission response table for a poll
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Poll ID"
// @Success      200 {object} services.PollResponses
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id}/responses [get]
func (h *StatsHandler) Responses(c *gin.Context) {
	userID := c.GetUint("user_id")
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	if _, err := h.pollService.GetPollByID(uint(pollID), userID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	responses, err := h.statsService.Responses(uint(pollID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, responses)
}
