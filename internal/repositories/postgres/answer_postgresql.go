package postgres

import (
	"context"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert creates the answer or, when the respondent re-answers the same
// question, replaces the stored value in place.
func (a AnswerPostgreSQL) Upsert(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "question_id"}, {Name: "respondent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"value", "is_valid", "validated_at", "updated_at",
			}),
		}).
		Create(answer).Error
}

func (a AnswerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}

	return &answer, nil
}

func (a AnswerPostgreSQL) Delete(ctx context.Context, id uint) error {
	return a.db.WithContext(ctx).Delete(&models.Answer{}, id).Error
}

func (a AnswerPostgreSQL) GetByQuestionAndRespondent(ctx context.Context, questionID uint, respondentID string) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).
		Where("question_id = ? AND respondent_id = ?", questionID, respondentID).
		First(&answer).Error; err != nil {
		return nil, err
	}

	return &answer, nil
}

func (a AnswerPostgreSQL) GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := a.db.WithContext(ctx).
		Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		Preload("Question").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) GetByQuestion(ctx context.Context, questionID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	var answers []*models.Answer

	query := a.db.WithContext(ctx).Where("question_id = ?", questionID)
	query = a.applyFilters(query, filters)

	if err := query.Preload("Respondent").Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	var answers []*models.Answer

	query := a.db.WithContext(ctx).Where("survey_id = ?", surveyID)
	query = a.applyFilters(query, filters)

	if err := query.Preload("Question").Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (a AnswerPostgreSQL) GetSurveyStats(ctx context.Context, surveyID uint) (*repositories.SurveyAnswerStats, error) {
	stats := &repositories.SurveyAnswerStats{
		AnswersPerDay:     make(map[string]int),
		AnswersByQuestion: make(map[uint]int),
	}

	var total int64
	if err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("survey_id = ?", surveyID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	stats.TotalAnswers = int(total)

	type questionCount struct {
		QuestionID uint
		Count      int
	}
	var byQuestion []questionCount
	if err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("survey_id = ?", surveyID).
		Select("question_id, COUNT(*) as count").
		Group("question_id").
		Scan(&byQuestion).Error; err != nil {
		return nil, err
	}
	for _, qc := range byQuestion {
		stats.AnswersByQuestion[qc.QuestionID] = qc.Count
	}

	type dayCount struct {
		Day   string
		Count int
	}
	var byDay []dayCount
	if err := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("survey_id = ?", surveyID).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as day, COUNT(*) as count").
		Group("day").
		Scan(&byDay).Error; err != nil {
		return nil, err
	}
	for _, dc := range byDay {
		stats.AnswersPerDay[dc.Day] = dc.Count
	}

	return stats, nil
}

func (a AnswerPostgreSQL) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	return a.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Delete(&models.Answer{}).Error
}

func (a AnswerPostgreSQL) DeleteByQuestion(ctx context.Context, questionID uint) error {
	return a.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.Answer{}).Error
}

func (a AnswerPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AnswerFilters) *gorm.DB {
	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}
	if filters.RespondentID != nil {
		query = query.Where("respondent_id = ?", *filters.RespondentID)
	}
	if filters.IsValid != nil {
		query = query.Where("is_valid = ?", *filters.IsValid)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
