package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/services"
)

type AnswerHandler struct {
	BaseHandler
	answerService services.AnswerService
}

func NewAnswerHandler(answerService services.AnswerService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{
		BaseHandler:   NewBaseHandler(logger),
		answerService: answerService,
	}
}

// SubmitAnswer stores the caller's answer and advances their progress
func (h *AnswerHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	answer, err := h.answerService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, answer)
}

// GetSurveyAnswers lists all answers of a survey, creator or admin only
func (h *AnswerHandler) GetSurveyAnswers(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	answers, err := h.answerService.GetBySurvey(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// GetQuestionAnswers lists all answers of one question, creator or admin only
func (h *AnswerHandler) GetQuestionAnswers(c *gin.Context) {
	questionID := ParseIDParam(c, "id")
	if questionID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	answers, err := h.answerService.GetByQuestion(c.Request.Context(), questionID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// GetMyAnswers lists the caller's own answers for a survey
func (h *AnswerHandler) GetMyAnswers(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	answers, err := h.answerService.GetMyAnswers(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// GetSurveyAnswerStats aggregates answer counts, creator or admin only
func (h *AnswerHandler) GetSurveyAnswerStats(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	stats, err := h.answerService.GetSurveyStats(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
