package repositories

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
)

// AnswerRepository holds one answer record per (question, respondent) pair.
type AnswerRepository interface {
	// Basic CRUD operations
	Upsert(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	Delete(ctx context.Context, id uint) error

	// Query operations
	GetByQuestionAndRespondent(ctx context.Context, questionID uint, respondentID string) (*models.Answer, error)
	GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) ([]*models.Answer, error)
	GetByQuestion(ctx context.Context, questionID uint, filters AnswerFilters) ([]*models.Answer, error)
	GetBySurvey(ctx context.Context, surveyID uint, filters AnswerFilters) ([]*models.Answer, error)

	// Statistics
	GetSurveyStats(ctx context.Context, surveyID uint) (*SurveyAnswerStats, error)

	// Cascade
	DeleteBySurvey(ctx context.Context, surveyID uint) error
	DeleteByQuestion(ctx context.Context, questionID uint) error
}
