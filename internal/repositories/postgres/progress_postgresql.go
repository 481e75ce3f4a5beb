package postgres

import (
	"context"
	"math"
	"strings"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p ProgressPostgreSQL) Create(ctx context.Context, progress *models.SurveyProgress) error {
	return p.db.WithContext(ctx).Create(progress).Error
}

func (p ProgressPostgreSQL) GetByID(ctx context.Context, id uint) (*models.SurveyProgress, error) {
	var progress models.SurveyProgress
	if err := p.db.WithContext(ctx).First(&progress, id).Error; err != nil {
		return nil, err
	}

	return &progress, nil
}

func (p ProgressPostgreSQL) Update(ctx context.Context, progress *models.SurveyProgress) error {
	return p.db.WithContext(ctx).Save(progress).Error
}

func (p ProgressPostgreSQL) GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	var progress models.SurveyProgress
	if err := p.db.WithContext(ctx).
		Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		First(&progress).Error; err != nil {
		return nil, err
	}

	return &progress, nil
}

// GetBySurveyAndRespondentForUpdate reads the record under a row lock.
// Must run inside a transaction; concurrent updates to the same record
// serialize on the lock.
func (p ProgressPostgreSQL) GetBySurveyAndRespondentForUpdate(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	var progress models.SurveyProgress
	if err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		First(&progress).Error; err != nil {
		return nil, err
	}

	return &progress, nil
}

func (p ProgressPostgreSQL) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ParticipantFilters) ([]*models.SurveyProgress, error) {
	var records []*models.SurveyProgress

	query := p.db.WithContext(ctx).Where("survey_id = ?", surveyID)
	query = p.applyParticipantFilters(query, filters)

	if err := query.
		Preload("Respondent").
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (p ProgressPostgreSQL) GetByRespondent(ctx context.Context, respondentID string) ([]*models.SurveyProgress, error) {
	var records []*models.SurveyProgress
	if err := p.db.WithContext(ctx).
		Where("respondent_id = ?", respondentID).
		Preload("Survey").
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (p ProgressPostgreSQL) GetCompletionStats(ctx context.Context, surveyID uint) (repositories.CompletionStats, error) {
	type statusGroup struct {
		Status      string
		Count       int
		AvgProgress float64
	}

	var groups []statusGroup
	if err := p.db.WithContext(ctx).
		Model(&models.SurveyProgress{}).
		Where("survey_id = ?", surveyID).
		Select("status, COUNT(*) as count, AVG(progress) as avg_progress").
		Group("status").
		Scan(&groups).Error; err != nil {
		return nil, err
	}

	stats := make(repositories.CompletionStats, len(groups))
	for _, g := range groups {
		stats[strings.ToLower(g.Status)] = repositories.StatusStats{
			Count:       g.Count,
			AvgProgress: int(math.Round(g.AvgProgress)),
		}
	}

	return stats, nil
}

func (p ProgressPostgreSQL) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	return p.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Delete(&models.SurveyProgress{}).Error
}

func (p ProgressPostgreSQL) applyParticipantFilters(query *gorm.DB, filters repositories.ParticipantFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.MinProgress != nil {
		query = query.Where("progress >= ?", *filters.MinProgress)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}
