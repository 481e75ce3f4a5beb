package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/services"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion adds a question to a survey
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
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

	question, err := h.questionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question with its options
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// GetSurveyQuestions lists a survey's questions in presentation order
func (h *QuestionHandler) GetSurveyQuestions(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	questions, err := h.questionService.GetBySurvey(c.Request.Context(), surveyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// UpdateQuestion updates question text or mandatory flag
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
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

	question, err := h.questionService.Update(c.Request.Context(), id, &req, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question from its survey
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id, userID, h.CurrentUserRole(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// MoveQuestion shifts a question one position up or down
func (h *QuestionHandler) MoveQuestion(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}
	questionID := ParseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	direction := c.Query("direction")

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	survey, err := h.questionService.Move(c.Request.Context(), surveyID, questionID, direction, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}
