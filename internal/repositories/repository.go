package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. Services receive one
// Repository and reach the stores through it.
type Repository interface {
	Survey() SurveyRepository
	Question() QuestionRepository
	Answer() AnswerRepository
	Progress() ProgressRepository
	User() UserRepository
}

// TransactionRepository is implemented by repositories that can scope all
// operations to a single transaction. Begin returns a Repository whose
// operations run inside the transaction until Commit or Rollback.
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err represents a unique constraint
// violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
