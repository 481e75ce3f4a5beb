package repositories

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
)

// ProgressRepository holds one SurveyProgress record per (survey,
// respondent) pair.
//
// A progress update is a read-modify-write: callers run it inside a
// transaction (TransactionRepository.Begin) and read the record through
// GetBySurveyAndRespondentForUpdate, which takes a row lock so concurrent
// updates to the same record serialize instead of losing writes. Records
// for different pairs never contend.
type ProgressRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, progress *models.SurveyProgress) error
	GetByID(ctx context.Context, id uint) (*models.SurveyProgress, error)
	Update(ctx context.Context, progress *models.SurveyProgress) error

	// Per-pair resolution
	GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error)
	GetBySurveyAndRespondentForUpdate(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error)

	// Cross-respondent queries
	GetBySurvey(ctx context.Context, surveyID uint, filters ParticipantFilters) ([]*models.SurveyProgress, error)
	GetByRespondent(ctx context.Context, respondentID string) ([]*models.SurveyProgress, error)

	// Aggregation
	GetCompletionStats(ctx context.Context, surveyID uint) (CompletionStats, error)

	// Cascade
	DeleteBySurvey(ctx context.Context, surveyID uint) error
}
