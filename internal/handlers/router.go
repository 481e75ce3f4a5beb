package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/surveycraft/survey-service/internal/middleware"
	"github.com/surveycraft/survey-service/internal/services"
)

type HandlerManager struct {
	surveyHandler   *SurveyHandler
	questionHandler *QuestionHandler
	answerHandler   *AnswerHandler
	progressHandler *ProgressHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger *slog.Logger) *HandlerManager {
	return &HandlerManager{
		surveyHandler:   NewSurveyHandler(serviceManager.Survey(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		answerHandler:   NewAnswerHandler(serviceManager.Answer(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), serviceManager.Export(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth *middleware.Authenticator) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireAuth())
	{
		// Survey routes
		surveys := v1.Group("/surveys")
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.PUT("/:id", hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", hm.surveyHandler.DeleteSurvey)
			surveys.POST("/:id/archive", hm.surveyHandler.ArchiveSurvey)
			surveys.POST("/:id/unarchive", hm.surveyHandler.UnarchiveSurvey)
			surveys.POST("/:id/duplicate", hm.surveyHandler.DuplicateSurvey)
			surveys.PUT("/:id/questions/reorder", hm.surveyHandler.ReorderSurveyQuestions)

			// Survey question listing
			surveys.GET("/:id/questions", hm.questionHandler.GetSurveyQuestions)
			surveys.POST("/:id/questions/:question_id/move", hm.questionHandler.MoveQuestion)

			// Survey answers
			surveys.GET("/:id/answers", hm.answerHandler.GetSurveyAnswers)
			surveys.GET("/:id/answers/my", hm.answerHandler.GetMyAnswers)
			surveys.GET("/:id/answers/stats", hm.answerHandler.GetSurveyAnswerStats)

			// Progress tracking
			surveys.POST("/:id/progress", hm.progressHandler.InitializeProgress)
			surveys.GET("/:id/progress", hm.progressHandler.GetMyProgress)
			surveys.GET("/:id/participants", hm.progressHandler.GetSurveyParticipants)
			surveys.GET("/:id/participants/export", hm.progressHandler.ExportParticipants)
			surveys.GET("/:id/stats", hm.progressHandler.GetCompletionStats)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.GET("/:id/answers", hm.answerHandler.GetQuestionAnswers)
		}

		// Answer routes
		answers := v1.Group("/answers")
		{
			answers.POST("", hm.answerHandler.SubmitAnswer)
		}

		// Respondent-centric routes
		me := v1.Group("/me")
		{
			me.GET("/progress", hm.progressHandler.GetMySurveys)
		}
	}
}
