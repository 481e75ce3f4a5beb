package services

import (
	"log/slog"

	"github.com/surveycraft/survey-service/internal/cache"
	"github.com/surveycraft/survey-service/internal/events"
	"github.com/surveycraft/survey-service/internal/repositories"
	"github.com/surveycraft/survey-service/internal/validator"
)

type serviceManager struct {
	survey   SurveyService
	question QuestionService
	answer   AnswerService
	progress ProgressService
	export   ExportService
}

// NewServiceManager builds the full service graph over one repository.
func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheStore cache.Cache,
) ServiceManager {
	progress := NewProgressService(repo, logger, v, publisher, cacheStore)

	return &serviceManager{
		survey:   NewSurveyService(repo, logger, v, publisher, cacheStore),
		question: NewQuestionService(repo, logger, v, cacheStore),
		answer:   NewAnswerService(repo, logger, v, progress),
		progress: progress,
		export:   NewExportService(repo, logger, progress),
	}
}

func (m *serviceManager) Survey() SurveyService     { return m.survey }
func (m *serviceManager) Question() QuestionService { return m.question }
func (m *serviceManager) Answer() AnswerService     { return m.answer }
func (m *serviceManager) Progress() ProgressService { return m.progress }
func (m *serviceManager) Export() ExportService     { return m.export }
