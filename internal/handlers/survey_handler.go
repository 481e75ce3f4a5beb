package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/repositories"
	"github.com/surveycraft/survey-service/internal/services"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
}

func NewSurveyHandler(surveyService services.SurveyService, logger *slog.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
	}
}

// CreateSurvey creates a new survey owned by the caller
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req services.CreateSurveyRequest
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

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetSurvey retrieves a survey with its questions
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// ListSurveys lists surveys with optional filters
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	filters := repositories.SurveyFilters{
		IsTemplate: ParseBoolQuery(c, "is_template"),
		IsArchived: ParseBoolQuery(c, "is_archived"),
		DateFrom:   ParseTimeQuery(c, "date_from"),
		DateTo:     ParseTimeQuery(c, "date_to"),
		Limit:      ParseIntQuery(c, "limit", 20),
		Offset:     ParseIntQuery(c, "offset", 0),
		SortBy:     c.DefaultQuery("sort_by", "created_at"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	}
	if creator := c.Query("created_by"); creator != "" {
		filters.CreatedBy = &creator
	}

	surveys, total, err := h.surveyService.List(c.Request.Context(), filters)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: surveys, Total: total})
}

// UpdateSurvey updates survey metadata
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSurveyRequest
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

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DeleteSurvey deletes a survey and all dependent data
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID, h.CurrentUserRole(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey deleted"})
}

// ArchiveSurvey marks a survey as archived
func (h *SurveyHandler) ArchiveSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Archive(c.Request.Context(), id, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UnarchiveSurvey restores an archived survey
func (h *SurveyHandler) UnarchiveSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Unarchive(c.Request.Context(), id, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// DuplicateSurvey creates a deep copy of a survey owned by the caller
func (h *SurveyHandler) DuplicateSurvey(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Duplicate(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

type reorderQuestionsRequest struct {
	QuestionOrder []uint `json:"question_order" validate:"required"`
}

// ReorderSurveyQuestions replaces the survey's question order
func (h *SurveyHandler) ReorderSurveyQuestions(c *gin.Context) {
	id := ParseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req reorderQuestionsRequest
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

	survey, err := h.surveyService.ReorderQuestions(c.Request.Context(), id, req.QuestionOrder, userID, h.CurrentUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}
