package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gamfolz-glitch/pollapp/internal/services"

	"github.com/gin-gonic/gin"
)

type ChoiceHandler struct {
	pollService *services.PollService
}

func NewChoiceHandler(pollService *services.PollService) *ChoiceHandler {
	return &ChoiceHandler{pollService: pollService}
}

type ChoiceRequest struct {
	Text      string `json:"text" binding:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateChoice godoc
// @Summary      Add a choice to a question
// @Tags         choices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body ChoiceRequest true "Choice data"
// @Success      201 {object} Choice
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/questions/{id}/choices [post]
func (h *ChoiceHandler) CreateChoice(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	choice, err := h.pollService.CreateChoice(uint(questionID), userID, services.ChoiceInput{
		Text:      req.Text,
		IsCorrect: req.IsCorrect,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "question not found"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, choice)
}

// UpdateChoice godoc
// @Summary      Update a choice
// @Tags         choices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Choice ID"
// @Param        request body ChoiceRequest true "Choice data"
// @Success      200 {object} Choice
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/choices/{id} [put]
func (h *ChoiceHandler) UpdateChoice(c *gin.Context) {
	userID := c.GetUint("user_id")
	choiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid choice id"})
		return
	}

	var req ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	choice, err := h.pollService.UpdateChoice(uint(choiceID), userID, services.ChoiceInput{
		Text:      req.Text,
		IsCorrect: req.IsCorrect,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "choice not found"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, choice)
}

// DeleteChoice godoc
// @Summary      Delete a choice
// @Tags         choices
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Choice ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/choices/{id} [delete]
func (h *ChoiceHandler) DeleteChoice(c *gin.Context) {
	userID := c.GetUint("user_id")
	choiceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid choice id"})
		return
	}

	if err := h.pollService.DeleteChoice(uint(choiceID), userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "choice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "choice deleted"})
}
