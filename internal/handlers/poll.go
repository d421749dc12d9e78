package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gamfolz-glitch/pollapp/internal/services"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	pollService *services.PollService
}

func NewPollHandler(pollService *services.PollService) *PollHandler {
	return &PollHandler{pollService: pollService}
}

type PollRequest struct {
	Title                    string `json:"title" binding:"required,max=200"`
	Description              string `json:"description"`
	AllowMultipleSubmissions bool   `json:"allow_multiple_submissions"`
	TimeLimitMinutes         *int   `json:"time_limit_minutes" binding:"omitempty,min=1"`
}

// ListPolls godoc
// @Summary      List the caller's polls
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Poll
// @Router       /api/v1/polls [get]
func (h *PollHandler) ListPolls(c *gin.Context) {
	userID := c.GetUint("user_id")

	polls, err := h.pollService.GetPollsByOwner(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, polls)
}

// CreatePoll godoc
// @Summary      Create a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PollRequest true "Poll data"
// @Success      201 {object} Poll
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/polls [post]
func (h *PollHandler) CreatePoll(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	poll, err := h.pollService.CreatePoll(userID, services.PollInput{
		Title:                    req.Title,
		Description:              req.Description,
		AllowMultipleSubmissions: req.AllowMultipleSubmissions,
		TimeLimitMinutes:         req.TimeLimitMinutes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// GetPoll godoc
// @Summary      Get one of the caller's polls
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Poll ID"
// @Success      200 {object} Poll
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id} [get]
func (h *PollHandler) GetPoll(c *gin.Context) {
	userID := c.GetUint("user_id")
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	poll, err := h.pollService.GetPollByID(uint(pollID), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	c.JSON(http.StatusOK, poll)
}

// UpdatePoll godoc
// @Summary      Update a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Poll ID"
// @Param        request body PollRequest true "Poll data"
// @Success      200 {object} Poll
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id} [put]
func (h *PollHandler) UpdatePoll(c *gin.Context) {
	userID := c.GetUint("user_id")
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	var req PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	poll, err := h.pollService.UpdatePoll(uint(pollID), userID, services.PollInput{
		Title:                    req.Title,
		Description:              req.Description,
		AllowMultipleSubmissions: req.AllowMultipleSubmissions,
		TimeLimitMinutes:         req.TimeLimitMinutes,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, poll)
}

// DeletePoll godoc
// @Summary      Delete a poll and everything under it
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Poll ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/polls/{id} [delete]
func (h *PollHandler) DeletePoll(c *gin.Context) {
	userID := c.GetUint("user_id")
	pollID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid poll id"})
		return
	}

	if err := h.pollService.DeletePoll(uint(pollID), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "poll deleted"})
}
