package handlers

import (
	"errors"
	"net/http"

	"github.com/gamfolz-glitch/pollapp/internal/middleware"
	"github.com/gamfolz-glitch/pollapp/internal/models"
	"github.com/gamfolz-glitch/pollapp/internal/services"
	"github.com/gamfolz-glitch/pollapp/internal/ws"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the participant-facing flow: fetch a poll by its
// access code, submit answers, see the result.
type PublicHandler struct {
	pollService       *services.PollService
	submissionService *services.SubmissionService
	timerService      *services.TimerService
	statsService      *services.StatsService
	hub               *ws.Hub
}

func NewPublicHandler(pollService *services.PollService, submissionService *services.SubmissionService, timerService *services.TimerService, statsService *services.StatsService, hub *ws.Hub) *PublicHandler {
	return &PublicHandler{
		pollService:       pollService,
		submissionService: submissionService,
		timerService:      timerService,
		statsService:      statsService,
		hub:               hub,
	}
}

type PublicChoice struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type PublicQuestion struct {
	ID             uint           `json:"id"`
	Text           string         `json:"text"`
	Kind           string         `json:"kind"`
	OrderNum       int            `json:"order_num"`
	IsTestQuestion bool           `json:"is_test_question"`
	Choices        []PublicChoice `json:"choices,omitempty"`
}

type PublicPollResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	AccessCode  string           `json:"access_code"`
	TimeLeft    *int             `json:"time_left,omitempty"`
	Questions   []PublicQuestion `json:"questions"`
}

type SubmitRequest struct {
	// Answers maps question id to submitted values: the text for TEXT
	// questions, choice ids for SINGLE and MULTI.
	Answers map[uint][]string `json:"answers" binding:"required"`
}

type SubmitErrorsResponse struct {
	Errors services.ValidationErrors `json:"errors"`
}

type TimeExceededResponse struct {
	Error          string `json:"error"`
	ElapsedMinutes int    `json:"elapsed_minutes"`
	LimitMinutes   int    `json:"limit_minutes"`
}

func identityFrom(c *gin.Context) services.Identity {
	identity := services.Identity{SessionKey: middleware.SessionKey(c)}
	if userID := c.GetUint("user_id"); userID != 0 {
		identity.UserID = &userID
	}
	return identity
}

// GetPoll godoc
// @Summary      Fetch a poll by access code
// @Description  Starts the participant's clock on time-limited polls.
// @Tags         public
// @Produce      json
// @Param        code path string true "Access code"
// @Success      200 {object} PublicPollResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/p/{code} [get]
func (h *PublicHandler) GetPoll(c *gin.Context) {
	poll, err := h.pollService.GetPollByAccessCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	identity := identityFrom(c)
	if err := h.submissionService.CheckEligibility(poll, identity); err != nil {
		if errors.Is(err, services.ErrAlreadySubmitted) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "already submitted"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	timeLeft, err := h.timerService.Begin(c.Request.Context(), poll, identity.SessionKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	questions, err := h.pollService.QuestionsOrdered(poll.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := PublicPollResponse{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		AccessCode:  poll.AccessCode,
		TimeLeft:    timeLeft,
		Questions:   make([]PublicQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		pq := PublicQuestion{
			ID:             q.ID,
			Text:           q.Text,
			Kind:           q.Kind,
			OrderNum:       q.OrderNum,
			IsTestQuestion: q.IsTestQuestion,
		}
		// Correctness flags stay server-side.
		for _, choice := range q.Choices {
			pq.Choices = append(pq.Choices, PublicChoice{ID: choice.ID, Text: choice.Text})
		}
		resp.Questions = append(resp.Questions, pq)
	}

	c.JSON(http.StatusOK, resp)
}

// Submit godoc
// @Summary      Submit answers to a poll
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        code path string true "Access code"
// @Param        request body SubmitRequest true "Answers keyed by question id"
// @Success      201 {object} Submission
// @Failure      400 {object} SubmitErrorsResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/p/{code}/submit [post]
func (h *PublicHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	identity := identityFrom(c)
	submission, err := h.submissionService.Submit(c.Request.Context(), c.Param("code"), identity, req.Answers)
	if err != nil {
		var verrs services.ValidationErrors
		var timeErr *services.TimeExceededError
		switch {
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, SubmitErrorsResponse{Errors: verrs})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		case errors.Is(err, services.ErrAlreadySubmitted):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "already submitted"})
		case errors.Is(err, services.ErrSessionExpired):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
		case errors.As(err, &timeErr):
			c.JSON(http.StatusForbidden, TimeExceededResponse{
				Error:          "time exceeded",
				ElapsedMinutes: timeErr.ElapsedMinutes,
				LimitMinutes:   timeErr.LimitMinutes,
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	if snapshot, err := h.statsService.Live(c.Param("code")); err == nil {
		h.hub.Broadcast(snapshot.PollID, ws.WSMessage{
			Type: "submission_received",
			Data: snapshot,
		})
	}

	c.JSON(http.StatusCreated, submission)
}

type ResultAnswer struct {
	Question       PublicQuestion `json:"question"`
	GivenText      string         `json:"given_text,omitempty"`
	GivenChoices   []PublicChoice `json:"given_choices,omitempty"`
	CorrectChoices []PublicChoice `json:"correct_choices,omitempty"`
	IsCorrect      *bool          `json:"is_correct,omitempty"`
}

type ResultResponse struct {
	PollID           uint           `json:"poll_id"`
	Title            string         `json:"title"`
	Score            int            `json:"score"`
	Total            int            `json:"total"`
	HasTestQuestions bool           `json:"has_test_questions"`
	Answers          []ResultAnswer `json:"answers,omitempty"`
}

// Result godoc
// @Summary      Show the caller's latest submission for a poll
// @Tags         public
// @Produce      json
// @Param        code path string true "Access code"
// @Success      200 {object} ResultResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/p/{code}/result [get]
func (h *PublicHandler) Result(c *gin.Context) {
	poll, err := h.pollService.GetPollByAccessCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	submission, err := h.submissionService.LatestSubmission(poll, identityFrom(c))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no submission found"})
		return
	}

	questions, err := h.pollService.QuestionsOrdered(poll.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := ResultResponse{
		PollID: poll.ID,
		Title:  poll.Title,
		Score:  submission.Score,
		Total:  submission.Total,
	}
	for _, q := range questions {
		if q.IsTestQuestion {
			resp.HasTestQuestions = true
			break
		}
	}
	if !resp.HasTestQuestions {
		c.JSON(http.StatusOK, resp)
		return
	}

	for _, q := range questions {
		var answer *models.Answer
		for i := range submission.Answers {
			if submission.Answers[i].QuestionID == q.ID {
				answer = &submission.Answers[i]
				break
			}
		}

		ra := ResultAnswer{
			Question: PublicQuestion{ID: q.ID, Text: q.Text, Kind: q.Kind, OrderNum: q.OrderNum, IsTestQuestion: q.IsTestQuestion},
		}
		if q.IsTestQuestion {
			for _, choice := range q.CorrectChoices() {
				ra.CorrectChoices = append(ra.CorrectChoices, PublicChoice{ID: choice.ID, Text: choice.Text})
			}
		}
		if answer != nil {
			ra.GivenText = answer.TextValue
			for _, choice := range answer.SelectedChoices {
				ra.GivenChoices = append(ra.GivenChoices, PublicChoice{ID: choice.ID, Text: choice.Text})
			}
			ra.IsCorrect = services.AnswerIsCorrect(q, answer.SelectedChoices)
		}
		resp.Answers = append(resp.Answers, ra)
	}

	c.JSON(http.StatusOK, resp)
}

// TimeLeft godoc
// @Summary      Remaining seconds for the caller's session
// @Tags         public
// @Produce      json
// @Param        code path string true "Access code"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/p/{code}/time [get]
func (h *PublicHandler) TimeLeft(c *gin.Context) {
	poll, err := h.pollService.GetPollByAccessCode(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "poll not found"})
		return
	}

	timeLeft, err := h.timerService.TimeLeft(c.Request.Context(), poll, middleware.SessionKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_left": timeLeft})
}
