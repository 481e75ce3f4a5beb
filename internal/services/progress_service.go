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

// statsCacheTTL bounds how stale cached completion statistics may get.
const statsCacheTTL = 2 * time.Minute

type progressService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.Cache
}

func NewProgressService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	cacheStore cache.Cache,
) ProgressService {
	return &progressService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheStore,
	}
}

// ===== RESPONDENT OPERATIONS =====

// Initialize resolves the progress record for (surveyID, respondentID),
// creating a NOT_STARTED record if none exists. Repeated calls return the
// existing record unchanged.
func (s *progressService) Initialize(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	progress, err := s.repo.Progress().GetBySurveyAndRespondent(ctx, surveyID, respondentID)
	if err == nil {
		// Percentage is derived, never stored stale: recompute against the
		// survey's current question set on every read.
		progress.Progress = models.ComputeProgress(progress.AnsweredQuestions, survey.QuestionIDs())
		return progress, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress = &models.SurveyProgress{
		SurveyID:          surveyID,
		RespondentID:      respondentID,
		Status:            models.ProgressNotStarted,
		AnsweredQuestions: []uint{},
		Progress:          0,
	}

	if err := s.repo.Progress().Create(ctx, progress); err != nil {
		// A concurrent Initialize may have created the record between our
		// read and write. The unique (survey, respondent) index rejects the
		// duplicate; re-read and return the winner.
		if repositories.IsDuplicateError(err) {
			return s.repo.Progress().GetBySurveyAndRespondent(ctx, surveyID, respondentID)
		}
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	s.logger.Info("Initialized survey progress",
		"survey_id", surveyID,
		"respondent_id", respondentID)

	return progress, nil
}

// Update records that the respondent answered questionID and advances the
// progress record: answered set, percentage, status transitions and their
// timestamps change together or not at all.
func (s *progressService) Update(ctx context.Context, surveyID uint, respondentID string, questionID uint) (*models.SurveyProgress, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	currentIDs := survey.QuestionIDs()
	if len(currentIDs) == 0 {
		return nil, ErrSurveyHasNoQuestions
	}

	found := false
	for _, id := range currentIDs {
		if id == questionID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrQuestionNotFound
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

	// Row lock serializes concurrent updates to the same (survey,
	// respondent) record so no answered entry is lost.
	progress, err := txRepo.Progress().GetBySurveyAndRespondentForUpdate(ctx, surveyID, respondentID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get progress for update: %w", err)
		}
		// Answering without a prior Initialize is allowed; create the
		// record on first use.
		progress = &models.SurveyProgress{
			SurveyID:          surveyID,
			RespondentID:      respondentID,
			Status:            models.ProgressNotStarted,
			AnsweredQuestions: []uint{},
		}
		if err = txRepo.Progress().Create(ctx, progress); err != nil {
			// Two first answers can race here; the unique index picks a
			// winner and the loser locks the winner's row.
			if !repositories.IsDuplicateError(err) {
				return nil, fmt.Errorf("failed to create progress: %w", err)
			}
			progress, err = txRepo.Progress().GetBySurveyAndRespondentForUpdate(ctx, surveyID, respondentID)
			if err != nil {
				return nil, fmt.Errorf("failed to re-read progress: %w", err)
			}
		}
	}

	now := time.Now().UTC()

	started := false
	if progress.Status == models.ProgressNotStarted {
		progress.Status = models.ProgressInProgress
		progress.StartedAt = &now
		started = true
	}

	// Prune entries for questions removed from the survey, then record the
	// new answer. Re-answering an already recorded question changes
	// nothing but LastAnsweredAt.
	answered := models.IntersectAnswered(progress.AnsweredQuestions, currentIDs)
	if !containsID(answered, questionID) {
		answered = append(answered, questionID)
	}
	progress.AnsweredQuestions = answered
	progress.LastAnsweredAt = &now
	progress.Progress = models.ComputeProgress(answered, currentIDs)

	completed := false
	if progress.Progress == 100 && progress.Status != models.ProgressCompleted {
		progress.Status = models.ProgressCompleted
		progress.CompletedAt = &now
		completed = true
	}

	if err = txRepo.Progress().Update(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit progress update: %w", err)
	}

	s.logger.Info("Updated survey progress",
		"survey_id", surveyID,
		"respondent_id", respondentID,
		"question_id", questionID,
		"progress", progress.Progress,
		"status", progress.Status)

	s.publishProgressEvents(ctx, survey, progress, questionID, len(currentIDs), started, completed)
	s.invalidateStatsCache(ctx, surveyID)

	return progress, nil
}

// Get returns the current progress record for the pair. The percentage is
// recomputed against the survey's live question set before returning.
func (s *progressService) Get(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	progress, err := s.repo.Progress().GetBySurveyAndRespondent(ctx, surveyID, respondentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	progress.Progress = models.ComputeProgress(progress.AnsweredQuestions, survey.QuestionIDs())
	return progress, nil
}

// ===== CREATOR / ADMIN OPERATIONS =====

// GetSurveyParticipants lists every respondent with a progress record for
// the survey, newest activity first. Only the survey creator or an admin
// may call it.
func (s *progressService) GetSurveyParticipants(ctx context.Context, surveyID uint, req *ParticipantListRequest, requesterID string) ([]*ParticipantResponse, error) {
	if req == nil {
		req = &ParticipantListRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.authorizeSurveyAccess(ctx, surveyID, requesterID, "list participants")
	if err != nil {
		return nil, err
	}

	filters := repositories.ParticipantFilters{
		Status:      req.Status,
		MinProgress: req.MinProgress,
		DateFrom:    req.StartDate,
		DateTo:      req.EndDate,
	}

	records, err := s.repo.Progress().GetBySurvey(ctx, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	currentIDs := survey.QuestionIDs()
	participants := make([]*ParticipantResponse, 0, len(records))
	for _, record := range records {
		record.Progress = models.ComputeProgress(record.AnsweredQuestions, currentIDs)

		info := RespondentInfo{ID: record.RespondentID}
		if user, uerr := s.repo.User().GetByID(ctx, record.RespondentID); uerr == nil {
			info.Username = user.Username
			info.Email = user.Email
		}

		participants = append(participants, &ParticipantResponse{
			Progress:   record,
			Respondent: info,
		})
	}

	return participants, nil
}

// GetCompletionStats aggregates the survey's progress records by status.
// Only the survey creator or an admin may call it.
func (s *progressService) GetCompletionStats(ctx context.Context, surveyID uint, requesterID string) (repositories.CompletionStats, error) {
	if _, err := s.authorizeSurveyAccess(ctx, surveyID, requesterID, "view completion stats"); err != nil {
		return nil, err
	}

	cacheKey := cache.SurveyStatsKey(surveyID)
	if s.cache != nil {
		var cached repositories.CompletionStats
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Progress().GetCompletionStats(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completion stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, statsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache completion stats", "survey_id", surveyID, "error", err)
		}
	}

	return stats, nil
}

// GetRespondentProgress returns the respondent's progress across all
// surveys they have records for, each annotated with survey metadata.
func (s *progressService) GetRespondentProgress(ctx context.Context, respondentID string) ([]*RespondentProgressResponse, error) {
	records, err := s.repo.Progress().GetByRespondent(ctx, respondentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get respondent progress: %w", err)
	}

	results := make([]*RespondentProgressResponse, 0, len(records))
	for _, record := range records {
		survey, serr := s.repo.Survey().GetByIDWithQuestions(ctx, record.SurveyID)
		if serr != nil {
			// A survey deleted after its progress records stays out of the
			// view rather than failing the whole listing.
			if repositories.IsNotFoundError(serr) {
				continue
			}
			return nil, fmt.Errorf("failed to get survey %d: %w", record.SurveyID, serr)
		}

		record.Progress = models.ComputeProgress(record.AnsweredQuestions, survey.QuestionIDs())

		results = append(results, &RespondentProgressResponse{
			Progress: record,
			Survey: SurveyInfo{
				ID:          survey.ID,
				Title:       survey.Title,
				Description: survey.Description,
			},
		})
	}

	return results, nil
}

// DeleteBySurvey removes every progress record of the survey. Used by the
// survey delete cascade.
func (s *progressService) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	if err := s.repo.Progress().DeleteBySurvey(ctx, surveyID); err != nil {
		return fmt.Errorf("failed to delete progress records: %w", err)
	}
	s.invalidateStatsCache(ctx, surveyID)
	return nil
}

// ===== HELPERS =====

// authorizeSurveyAccess loads the survey and checks that the requester is
// its creator or an admin before any cross-respondent data is touched.
func (s *progressService) authorizeSurveyAccess(ctx context.Context, surveyID uint, requesterID, action string) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy == requesterID {
		return survey, nil
	}

	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewPermissionError(requesterID, surveyID, "survey", action, "requester unknown")
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}
	if !requester.IsAdmin() {
		return nil, NewPermissionError(requesterID, surveyID, "survey", action, "not survey creator")
	}

	return survey, nil
}

func (s *progressService) publishProgressEvents(ctx context.Context, survey *models.Survey, progress *models.SurveyProgress, questionID uint, totalCount int, started, completed bool) {
	if s.publisher == nil {
		return
	}

	if started {
		event := events.NewSurveyEvent(events.EventProgressStarted, events.ProgressStartedEvent{
			SurveyID:     survey.ID,
			SurveyTitle:  survey.Title,
			RespondentID: progress.RespondentID,
			StartedAt:    *progress.StartedAt,
		})
		if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish progress started event", "survey_id", survey.ID, "error", err)
		}
	}

	event := events.NewSurveyEvent(events.EventProgressUpdated, events.ProgressUpdatedEvent{
		SurveyID:      survey.ID,
		RespondentID:  progress.RespondentID,
		QuestionID:    questionID,
		Progress:      progress.Progress,
		AnsweredCount: len(progress.AnsweredQuestions),
		TotalCount:    totalCount,
	})
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish progress updated event", "survey_id", survey.ID, "error", err)
	}

	if completed {
		event := events.NewSurveyEvent(events.EventSurveyCompleted, events.SurveyCompletedEvent{
			SurveyID:     survey.ID,
			SurveyTitle:  survey.Title,
			RespondentID: progress.RespondentID,
			CompletedAt:  *progress.CompletedAt,
			CreatorID:    survey.CreatedBy,
		})
		if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish survey completed event", "survey_id", survey.ID, "error", err)
		}
	}
}

func (s *progressService) invalidateStatsCache(ctx context.Context, surveyID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.SurveyStatsKey(surveyID)); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", "survey_id", surveyID, "error", err)
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
