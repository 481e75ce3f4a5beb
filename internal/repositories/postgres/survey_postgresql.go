package postgres

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s SurveyPostgreSQL) Create(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).Create(survey).Error
}

func (s SurveyPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).First(&survey, id).Error; err != nil {
		return nil, err
	}

	return &survey, nil
}

func (s SurveyPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.\"order\" ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("response_options.\"order\" ASC")
		}).
		First(&survey, id).Error; err != nil {
		return nil, err
	}

	survey.QuestionsCount = len(survey.Questions)
	return &survey, nil
}

func (s SurveyPostgreSQL) Update(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).Save(survey).Error
}

func (s SurveyPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Survey{}, id).Error
}

func (s SurveyPostgreSQL) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	var surveys []*models.Survey
	var total int64

	// apply filters first
	query := s.db.WithContext(ctx).Model(&models.Survey{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Creator").Find(&surveys).Error; err != nil {
		return nil, 0, err
	}

	return surveys, total, nil
}

func (s SurveyPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	filters.CreatedBy = &creatorID
	return s.List(ctx, filters)
}

func (s SurveyPostgreSQL) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("title = ?", title).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s SurveyPostgreSQL) SetQuestionOrder(ctx context.Context, surveyID uint, order []uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ?", surveyID).
		Update("question_order", datatypes.NewJSONSlice(order)).Error
}

func (s SurveyPostgreSQL) GetQuestionCount(ctx context.Context, surveyID uint) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return int(count), nil
}

func (s SurveyPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SurveyFilters) *gorm.DB {
	if filters.IsTemplate != nil {
		query = query.Where("is_template = ?", *filters.IsTemplate)
	}
	if filters.IsArchived != nil {
		query = query.Where("is_archived = ?", *filters.IsArchived)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// applyPaginationAndSort applies shared pagination and sorting rules.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" {
		sortBy = "updated_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
