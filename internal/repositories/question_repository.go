package repositories

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
)

// QuestionRepository holds ordered questions per survey.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	GetBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error)
	GetMaxOrder(ctx context.Context, surveyID uint) (int, error)
	CountBySurvey(ctx context.Context, surveyID uint) (int64, error)

	// Ordering
	ReorderQuestions(ctx context.Context, surveyID uint, orders []QuestionOrder) error

	// Response options
	CreateOptions(ctx context.Context, options []*models.ResponseOption) error
	DeleteOptionsByQuestion(ctx context.Context, questionID uint) error

	// Cascade
	DeleteBySurvey(ctx context.Context, surveyID uint) error
}
