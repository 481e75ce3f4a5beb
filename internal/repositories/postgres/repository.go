package postgres

import (
	"context"
	"fmt"

	"github.com/surveycraft/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the GORM-backed implementation of
// repositories.TransactionRepository.
type Repository struct {
	db *gorm.DB

	survey   repositories.SurveyRepository
	question repositories.QuestionRepository
	answer   repositories.AnswerRepository
	progress repositories.ProgressRepository
	user     repositories.UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		survey:   NewSurveyPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		answer:   NewAnswerPostgreSQL(db),
		progress: NewProgressPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *Repository) Survey() repositories.SurveyRepository     { return r.survey }
func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) Answer() repositories.AnswerRepository     { return r.answer }
func (r *Repository) Progress() repositories.ProgressRepository { return r.progress }
func (r *Repository) User() repositories.UserRepository         { return r.user }

// Begin opens a transaction and returns a Repository scoped to it.
func (r *Repository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return NewRepository(tx), nil
}

func (r *Repository) Commit(ctx context.Context) error {
	return r.db.Commit().Error
}

func (r *Repository) Rollback(ctx context.Context) error {
	return r.db.Rollback().Error
}
