package repositories

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
)

// SurveyRepository holds survey metadata plus the denormalized ordered list
// of question identifiers.
type SurveyRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Survey, error)
	Update(ctx context.Context, survey *models.Survey) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters SurveyFilters) ([]*models.Survey, int64, error)
	GetByCreator(ctx context.Context, creatorID string, filters SurveyFilters) ([]*models.Survey, int64, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// Question reference management
	SetQuestionOrder(ctx context.Context, surveyID uint, order []uint) error
	GetQuestionCount(ctx context.Context, surveyID uint) (int, error)
}

// UserRepository resolves respondent and creator identities.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
