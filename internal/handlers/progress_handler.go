package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/services"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
	exportService   services.ExportService
}

func NewProgressHandler(
	progressService services.ProgressService,
	exportService services.ExportService,
	logger *slog.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
		exportService:   exportService,
	}
}

// InitializeProgress resolves or creates the caller's progress record
func (h *ProgressHandler) InitializeProgress(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.Initialize(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMyProgress returns the caller's progress for a survey
func (h *ProgressHandler) GetMyProgress(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.Get(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMySurveys returns the caller's progress across all surveys
func (h *ProgressHandler) GetMySurveys(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	results, err := h.progressService.GetRespondentProgress(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetSurveyParticipants lists participants of a survey, creator or admin only
func (h *ProgressHandler) GetSurveyParticipants(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	req := &services.ParticipantListRequest{
		MinProgress: parseMinProgressQuery(c),
		StartDate:   ParseTimeQuery(c, "start_date"),
		EndDate:     ParseTimeQuery(c, "end_date"),
	}
	if status := c.Query("status"); status != "" {
		s := models.ProgressStatus(status)
		req.Status = &s
	}

	participants, err := h.progressService.GetSurveyParticipants(c.Request.Context(), surveyID, req, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

// GetCompletionStats aggregates progress by status, creator or admin only
func (h *ProgressHandler) GetCompletionStats(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	stats, err := h.progressService.GetCompletionStats(c.Request.Context(), surveyID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportParticipants downloads the participant list as XLSX or CSV
func (h *ProgressHandler) ExportParticipants(c *gin.Context) {
	surveyID := ParseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "xlsx":
		data, err := h.exportService.ExportParticipantsToExcel(c.Request.Context(), surveyID, userID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=survey_%d_participants.xlsx", surveyID))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exportService.ExportParticipantsToCSV(c.Request.Context(), surveyID, userID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=survey_%d_participants.csv", surveyID))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid format",
			Details: "supported formats: xlsx, csv",
		})
	}
}

func parseMinProgressQuery(c *gin.Context) *int {
	if c.Query("min_progress") == "" {
		return nil
	}
	value := ParseIntQuery(c, "min_progress", 0)
	return &value
}
