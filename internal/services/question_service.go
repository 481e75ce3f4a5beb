package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/surveycraft/survey-service/internal/cache"
	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"github.com/surveycraft/survey-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     cache.Cache
}

func NewQuestionService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	cacheStore cache.Cache,
) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheStore,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.Type.HasOptions() && len(req.ResponseValues) == 0 {
		return nil, NewValidationError("response_values", "choice questions require at least one option", req.ResponseValues)
	}
	if !req.Type.HasOptions() && len(req.ResponseValues) > 0 {
		return nil, NewValidationError("response_values", "only choice questions carry options", req.ResponseValues)
	}

	survey, err := s.repo.Survey().GetByID(ctx, req.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}
	if err := s.checkSurveyOwnership(ctx, survey, creatorID, "add question"); err != nil {
		return nil, err
	}

	maxOrder, err := s.repo.Question().GetMaxOrder(ctx, req.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max question order: %w", err)
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

	question := &models.Question{
		SurveyID:      req.SurveyID,
		Text:          req.Text,
		Type:          req.Type,
		AllowMultiple: req.AllowMultiple,
		IsMandatory:   req.IsMandatory,
		Order:         maxOrder + 1,
		CreatedBy:     creatorID,
	}
	if err = txRepo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if len(req.ResponseValues) > 0 {
		options := make([]*models.ResponseOption, 0, len(req.ResponseValues))
		for i, value := range req.ResponseValues {
			options = append(options, &models.ResponseOption{
				QuestionID: question.ID,
				Value:      value,
				Order:      i,
			})
		}
		if err = txRepo.Question().CreateOptions(ctx, options); err != nil {
			return nil, fmt.Errorf("failed to create question options: %w", err)
		}
		question.Options = make([]models.ResponseOption, len(options))
		for i, opt := range options {
			question.Options[i] = *opt
		}
	}

	if err = txRepo.Survey().SetQuestionOrder(ctx, req.SurveyID, append(survey.QuestionOrder, question.ID)); err != nil {
		return nil, fmt.Errorf("failed to append question to order: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit question create: %w", err)
	}

	s.logger.Info("Created question",
		"survey_id", req.SurveyID,
		"question_id", question.ID,
		"type", question.Type)

	s.invalidateSurveyCache(ctx, req.SurveyID)

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByIDWithOptions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) GetBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	if _, err := s.repo.Survey().GetByID(ctx, surveyID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	questions, err := s.repo.Question().GetBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey questions: %w", err)
	}
	return questions, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string, role models.UserRole) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByIDWithOptions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, question.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}
	if survey.CreatedBy != userID && role != models.RoleAdmin {
		return nil, NewPermissionError(userID, id, "question", "update", "not survey creator")
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.IsMandatory != nil {
		question.IsMandatory = *req.IsMandatory
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidateSurveyCache(ctx, question.SurveyID)

	return question, nil
}

// Delete removes the question together with its options and answers, and
// drops it from the survey's presentation order. Progress records are not
// touched here; stale answered entries are excluded from the percentage
// and pruned on the respondent's next update.
func (s *questionService) Delete(ctx context.Context, id uint, userID string, role models.UserRole) error {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, question.SurveyID)
	if err != nil {
		return fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy != userID && role != models.RoleAdmin {
		return NewPermissionError(userID, id, "question", "delete", "not survey creator")
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

	if err = txRepo.Answer().DeleteByQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question answers: %w", err)
	}
	if err = txRepo.Question().DeleteOptionsByQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question options: %w", err)
	}
	if err = txRepo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	order := make([]uint, 0, len(survey.QuestionOrder))
	for _, qid := range survey.QuestionOrder {
		if qid != id {
			order = append(order, qid)
		}
	}
	if err = txRepo.Survey().SetQuestionOrder(ctx, question.SurveyID, order); err != nil {
		return fmt.Errorf("failed to update question order: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit question delete: %w", err)
	}

	s.logger.Info("Deleted question",
		"survey_id", question.SurveyID,
		"question_id", id,
		"user_id", userID)

	s.invalidateSurveyCache(ctx, question.SurveyID)

	return nil
}

// Move shifts the question one position up or down in the survey's
// presentation order.
func (s *questionService) Move(ctx context.Context, surveyID, questionID uint, direction string, userID string, role models.UserRole) (*models.Survey, error) {
	if direction != "up" && direction != "down" {
		return nil, NewValidationError("direction", "direction must be \"up\" or \"down\"", direction)
	}

	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}
	if survey.CreatedBy != userID && role != models.RoleAdmin {
		return nil, NewPermissionError(userID, surveyID, "survey", "move question", "not survey creator")
	}

	order := append([]uint(nil), survey.QuestionOrder...)
	pos := -1
	for i, qid := range order {
		if qid == questionID {
			pos = i
			break
		}
	}
	if pos == -1 {
		return nil, ErrQuestionNotFound
	}

	swap := pos - 1
	if direction == "down" {
		swap = pos + 1
	}
	if swap < 0 || swap >= len(order) {
		return nil, ErrQuestionInvalidMove
	}
	order[pos], order[swap] = order[swap], order[pos]

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	orders := make([]repositories.QuestionOrder, len(order))
	for i, qid := range order {
		orders[i] = repositories.QuestionOrder{QuestionID: qid, Order: i}
	}
	if err = txRepo.Question().ReorderQuestions(ctx, surveyID, orders); err != nil {
		return nil, fmt.Errorf("failed to reorder questions: %w", err)
	}
	if err = txRepo.Survey().SetQuestionOrder(ctx, surveyID, order); err != nil {
		return nil, fmt.Errorf("failed to set question order: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit question move: %w", err)
	}

	s.invalidateSurveyCache(ctx, surveyID)

	return s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
}

// ===== HELPERS =====

func (s *questionService) checkSurveyOwnership(ctx context.Context, survey *models.Survey, userID, action string) error {
	if survey.CreatedBy == userID {
		return nil
	}
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(userID, survey.ID, "survey", action, "requester unknown")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsAdmin() {
		return NewPermissionError(userID, survey.ID, "survey", action, "not survey creator")
	}
	return nil
}

func (s *questionService) invalidateSurveyCache(ctx context.Context, surveyID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cache.SurveyPattern(surveyID)); err != nil {
		s.logger.Warn("Failed to invalidate survey cache", "survey_id", surveyID, "error", err)
	}
}
