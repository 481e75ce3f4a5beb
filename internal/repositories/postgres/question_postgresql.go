package postgres

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (q QuestionPostgreSQL) GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("response_options.\"order\" ASC")
		}).
		First(&question, id).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (q QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q QuestionPostgreSQL) GetBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("\"order\" ASC").
		Preload("Options").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (q QuestionPostgreSQL) GetMaxOrder(ctx context.Context, surveyID uint) (int, error) {
	var maxOrder *int
	if err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Select("MAX(\"order\")").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}

	if maxOrder == nil {
		return 0, nil
	}
	return *maxOrder, nil
}

func (q QuestionPostgreSQL) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}

func (q QuestionPostgreSQL) ReorderQuestions(ctx context.Context, surveyID uint, orders []repositories.QuestionOrder) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			if err := tx.Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", order.QuestionID, surveyID).
				Update("order", order.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (q QuestionPostgreSQL) CreateOptions(ctx context.Context, options []*models.ResponseOption) error {
	if len(options) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Create(options).Error
}

func (q QuestionPostgreSQL) DeleteOptionsByQuestion(ctx context.Context, questionID uint) error {
	return q.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.ResponseOption{}).Error
}

func (q QuestionPostgreSQL) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	return q.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Delete(&models.Question{}).Error
}
