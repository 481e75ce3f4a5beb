package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
	"github.com/surveycraft/survey-service/internal/validator"
)

type answerService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	progress  ProgressService
}

// NewAnswerService wires the answer service. A valid submission advances
// the respondent's progress record through the progress service.
func NewAnswerService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	progress ProgressService,
) AnswerService {
	return &answerService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		progress:  progress,
	}
}

// Submit validates and stores the respondent's answer, then records the
// question as answered in the respondent's progress. Re-submitting an
// answer for the same question overwrites the stored value.
func (s *answerService) Submit(ctx context.Context, req *SubmitAnswerRequest, respondentID string) (*models.Answer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, req.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.IsArchived {
		return nil, ErrSurveyArchived
	}

	var question *models.Question
	for i := range survey.Questions {
		if survey.Questions[i].ID == req.QuestionID {
			question = &survey.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	if err := s.validator.Answer().ValidateValue(question, req.Value); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAnswerInvalidValue, err.Error())
	}

	now := time.Now().UTC()
	answer := &models.Answer{
		SurveyID:     req.SurveyID,
		QuestionID:   req.QuestionID,
		RespondentID: respondentID,
		Value:        datatypes.JSON(req.Value),
		IsValid:      true,
		ValidatedAt:  &now,
	}

	if err := s.repo.Answer().Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	s.logger.Info("Submitted answer",
		"survey_id", req.SurveyID,
		"question_id", req.QuestionID,
		"respondent_id", respondentID)

	// Recording the answered question is what moves the percentage and
	// status. The stored answer stands even if this fails; the progress
	// record catches up on the next submission.
	if _, err := s.progress.Update(ctx, req.SurveyID, respondentID, req.QuestionID); err != nil {
		s.logger.Error("Failed to update progress after answer",
			"survey_id", req.SurveyID,
			"respondent_id", respondentID,
			"error", err)
	}

	return answer, nil
}

// GetBySurvey returns all answers of a survey. Creator or admin only.
func (s *answerService) GetBySurvey(ctx context.Context, surveyID uint, requesterID string) ([]*models.Answer, error) {
	if err := s.authorizeSurveyAccess(ctx, surveyID, requesterID, "list answers"); err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().GetBySurvey(ctx, surveyID, repositories.AnswerFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get survey answers: %w", err)
	}
	return answers, nil
}

// GetByQuestion returns all answers of one question. Creator or admin only.
func (s *answerService) GetByQuestion(ctx context.Context, questionID uint, requesterID string) ([]*models.Answer, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.authorizeSurveyAccess(ctx, question.SurveyID, requesterID, "list answers"); err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().GetByQuestion(ctx, questionID, repositories.AnswerFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get question answers: %w", err)
	}
	return answers, nil
}

// GetMyAnswers returns the respondent's own answers for a survey. No
// cross-respondent data is involved, so no creator check applies.
func (s *answerService) GetMyAnswers(ctx context.Context, surveyID uint, respondentID string) ([]*models.Answer, error) {
	if _, err := s.repo.Survey().GetByID(ctx, surveyID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	answers, err := s.repo.Answer().GetBySurveyAndRespondent(ctx, surveyID, respondentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	return answers, nil
}

// GetSurveyStats aggregates answer counts per question and per day.
// Creator or admin only.
func (s *answerService) GetSurveyStats(ctx context.Context, surveyID uint, requesterID string) (*repositories.SurveyAnswerStats, error) {
	if err := s.authorizeSurveyAccess(ctx, surveyID, requesterID, "view answer stats"); err != nil {
		return nil, err
	}

	stats, err := s.repo.Answer().GetSurveyStats(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer stats: %w", err)
	}
	return stats, nil
}

func (s *answerService) authorizeSurveyAccess(ctx context.Context, surveyID uint, requesterID, action string) error {
	survey, err := s.repo.Survey().GetByID(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.CreatedBy == requesterID {
		return nil
	}

	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewPermissionError(requesterID, surveyID, "survey", action, "requester unknown")
		}
		return fmt.Errorf("failed to get requester: %w", err)
	}
	if !requester.IsAdmin() {
		return NewPermissionError(requesterID, surveyID, "survey", action, "not survey creator")
	}
	return nil
}
