package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/surveycraft/survey-service/internal/cache"
	"github.com/surveycraft/survey-service/internal/events"
	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"github.com/surveycraft/survey-service/internal/validator"
)

type surveyService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.Cache
}

func NewSurveyService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	cacheStore cache.Cache,
) SurveyService {
	return &surveyService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheStore,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error) {
	s.logger.Info("Creating survey", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Survey().ExistsByTitle(ctx, req.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrSurveyDuplicateTitle
	}

	survey := &models.Survey{
		Title:         req.Title,
		Description:   req.Description,
		IsTemplate:    req.IsTemplate,
		QuestionOrder: []uint{},
		CreatedBy:     creatorID,
	}

	if err := s.repo.Survey().Create(ctx, survey); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrSurveyDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	return survey, nil
}

func (s *surveyService) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	if s.cache != nil {
		var cached models.Survey
		if err := s.cache.Get(ctx, cache.SurveyKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	survey.QuestionsCount = len(survey.Questions)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.SurveyKey(id), survey, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache survey", "survey_id", id, "error", err)
		}
	}

	return survey, nil
}

func (s *surveyService) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	surveys, total, err := s.repo.Survey().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, total, nil
}

func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string, role models.UserRole) (*models.Survey, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getOwnedSurvey(ctx, id, userID, role, "update")
	if err != nil {
		return nil, err
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}

	if req.Title != nil && *req.Title != survey.Title {
		exists, err := s.repo.Survey().ExistsByTitle(ctx, *req.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrSurveyDuplicateTitle
		}
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = req.Description
	}
	if req.IsTemplate != nil {
		survey.IsTemplate = *req.IsTemplate
	}

	if err := s.repo.Survey().Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	s.invalidateSurveyCache(ctx, id)

	return survey, nil
}

// Delete removes the survey and cascades to its questions, answers and
// progress records inside one transaction.
func (s *surveyService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	survey, err := s.getOwnedSurvey(ctx, id, userID, role, "delete")
	if err != nil {
		return err
	}

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	if err = txRepo.Answer().DeleteBySurvey(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey answers: %w", err)
	}
	if err = txRepo.Progress().DeleteBySurvey(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey progress: %w", err)
	}
	if err = txRepo.Question().DeleteBySurvey(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey questions: %w", err)
	}
	if err = txRepo.Survey().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit survey delete: %w", err)
	}

	s.logger.Info("Deleted survey", "survey_id", id, "user_id", userID)

	s.invalidateSurveyCache(ctx, id)
	s.publishSurveyEvent(ctx, events.EventSurveyDeleted, events.SurveyDeletedEvent{
		SurveyID:  id,
		DeletedAt: time.Now().UTC(),
		CreatorID: survey.CreatedBy,
	})

	return nil
}

// ===== LIFECYCLE OPERATIONS =====

func (s *surveyService) Archive(ctx context.Context, id uint, userID string, role models.UserRole) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(ctx, id, userID, role, "archive")
	if err != nil {
		return nil, err
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}

	now := time.Now().UTC()
	survey.IsArchived = true
	survey.ArchivedAt = &now

	if err := s.repo.Survey().Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to archive survey: %w", err)
	}

	s.invalidateSurveyCache(ctx, id)
	s.publishSurveyEvent(ctx, events.EventSurveyArchived, events.SurveyArchivedEvent{
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
		ArchivedAt:  now,
		CreatorID:   survey.CreatedBy,
	})

	return survey, nil
}

func (s *surveyService) Unarchive(ctx context.Context, id uint, userID string, role models.UserRole) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(ctx, id, userID, role, "unarchive")
	if err != nil {
		return nil, err
	}
	if !survey.IsArchived {
		return nil, ErrInvalidState
	}

	survey.IsArchived = false
	survey.ArchivedAt = nil

	if err := s.repo.Survey().Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to unarchive survey: %w", err)
	}

	s.invalidateSurveyCache(ctx, id)

	return survey, nil
}

// Duplicate creates a deep copy of the survey (questions and options
// included) owned by the caller. Progress and answers are not copied.
func (s *surveyService) Duplicate(ctx context.Context, id uint, userID string) (*models.Survey, error) {
	source, err := s.repo.Survey().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	title := s.nextCopyTitle(ctx, source.Title)

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	copySurvey := &models.Survey{
		Title:         title,
		Description:   source.Description,
		IsTemplate:    source.IsTemplate,
		QuestionOrder: []uint{},
		CreatedBy:     userID,
	}
	if err = txRepo.Survey().Create(ctx, copySurvey); err != nil {
		return nil, fmt.Errorf("failed to create survey copy: %w", err)
	}

	order := make([]uint, 0, len(source.Questions))
	for _, q := range source.Questions {
		questionCopy := &models.Question{
			SurveyID:      copySurvey.ID,
			Text:          q.Text,
			Type:          q.Type,
			AllowMultiple: q.AllowMultiple,
			IsMandatory:   q.IsMandatory,
			Order:         q.Order,
			CreatedBy:     userID,
		}
		if err = txRepo.Question().Create(ctx, questionCopy); err != nil {
			return nil, fmt.Errorf("failed to copy question: %w", err)
		}

		if len(q.Options) > 0 {
			options := make([]*models.ResponseOption, 0, len(q.Options))
			for _, opt := range q.Options {
				options = append(options, &models.ResponseOption{
					QuestionID: questionCopy.ID,
					Value:      opt.Value,
					Order:      opt.Order,
				})
			}
			if err = txRepo.Question().CreateOptions(ctx, options); err != nil {
				return nil, fmt.Errorf("failed to copy question options: %w", err)
			}
		}

		order = append(order, questionCopy.ID)
	}

	if err = txRepo.Survey().SetQuestionOrder(ctx, copySurvey.ID, order); err != nil {
		return nil, fmt.Errorf("failed to set question order: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit survey duplicate: %w", err)
	}

	s.logger.Info("Duplicated survey",
		"source_survey_id", id,
		"new_survey_id", copySurvey.ID,
		"user_id", userID)

	return s.repo.Survey().GetByIDWithQuestions(ctx, copySurvey.ID)
}

// ReorderQuestions replaces the survey's presentation order. The provided
// order must be a permutation of the survey's current question IDs.
func (s *surveyService) ReorderQuestions(ctx context.Context, id uint, questionOrder []uint, userID string, role models.UserRole) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(ctx, id, userID, role, "reorder questions")
	if err != nil {
		return nil, err
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}

	currentIDs := survey.QuestionIDs()
	if len(questionOrder) != len(currentIDs) {
		return nil, ErrInvalidQuestionOrder
	}
	current := make(map[uint]struct{}, len(currentIDs))
	for _, qid := range currentIDs {
		current[qid] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(questionOrder))
	for _, qid := range questionOrder {
		if _, ok := current[qid]; !ok {
			return nil, ErrInvalidQuestionOrder
		}
		if _, dup := seen[qid]; dup {
			return nil, ErrInvalidQuestionOrder
		}
		seen[qid] = struct{}{}
	}

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	orders := make([]repositories.QuestionOrder, len(questionOrder))
	for i, qid := range questionOrder {
		orders[i] = repositories.QuestionOrder{QuestionID: qid, Order: i}
	}
	if err = txRepo.Question().ReorderQuestions(ctx, id, orders); err != nil {
		return nil, fmt.Errorf("failed to reorder questions: %w", err)
	}
	if err = txRepo.Survey().SetQuestionOrder(ctx, id, questionOrder); err != nil {
		return nil, fmt.Errorf("failed to set question order: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reorder: %w", err)
	}

	s.invalidateSurveyCache(ctx, id)

	return s.repo.Survey().GetByIDWithQuestions(ctx, id)
}

// ===== HELPERS =====

func (s *surveyService) getOwnedSurvey(ctx context.Context, id uint, userID string, role models.UserRole, action string) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID && role != models.RoleAdmin {
		return nil, NewPermissionError(userID, id, "survey", action, "not survey creator")
	}
	return survey, nil
}

// nextCopyTitle finds a title of the form "<title> (Copy)", "<title>
// (Copy 2)", ... not yet in use.
func (s *surveyService) nextCopyTitle(ctx context.Context, title string) string {
	candidate := fmt.Sprintf("%s (Copy)", title)
	for n := 2; ; n++ {
		exists, err := s.repo.Survey().ExistsByTitle(ctx, candidate)
		if err != nil || !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s (Copy %d)", title, n)
	}
}

func (s *surveyService) invalidateSurveyCache(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.SurveyPattern(id)); err != nil {
		s.logger.Warn("Failed to invalidate survey cache", "survey_id", id, "error", err)
	}
}

func (s *surveyService) publishSurveyEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.NewSurveyEvent(eventType, data)
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish survey event", "event_type", eventType, "error", err)
	}
}
