package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
)

// ===== REQUEST STRUCTS =====

type CreateSurveyRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsTemplate  bool    `json:"is_template"`
}

type UpdateSurveyRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsTemplate  *bool   `json:"is_template"`
}

type CreateQuestionRequest struct {
	SurveyID       uint                `json:"survey_id" validate:"required"`
	Text           string              `json:"text" validate:"required,min=1"`
	Type           models.ResponseType `json:"type" validate:"required,response_type"`
	AllowMultiple  bool                `json:"allow_multiple"`
	IsMandatory    bool                `json:"is_mandatory"`
	ResponseValues []string            `json:"response_values" validate:"omitempty,dive,required"`
}

type UpdateQuestionRequest struct {
	Text        *string `json:"text" validate:"omitempty,min=1"`
	IsMandatory *bool   `json:"is_mandatory"`
}

type SubmitAnswerRequest struct {
	SurveyID   uint            `json:"survey_id" validate:"required"`
	QuestionID uint            `json:"question_id" validate:"required"`
	Value      json.RawMessage `json:"value" validate:"required"`
}

// ParticipantListRequest carries the optional filters of the participant
// listing. All provided filters are combined with AND.
type ParticipantListRequest struct {
	Status      *models.ProgressStatus `json:"status" validate:"omitempty,progress_status"`
	MinProgress *int                   `json:"min_progress" validate:"omitempty,min=0,max=100"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
}

// ===== RESPONSE STRUCTS =====

type RespondentInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SurveyInfo struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ParticipantResponse is one survey participant's progress joined with
// respondent display info.
type ParticipantResponse struct {
	Progress   *models.SurveyProgress `json:"progress"`
	Respondent RespondentInfo         `json:"respondent"`
}

// RespondentProgressResponse is one progress record annotated with minimal
// survey metadata, for the respondent-centric view.
type RespondentProgressResponse struct {
	Progress *models.SurveyProgress `json:"progress"`
	Survey   SurveyInfo             `json:"survey"`
}

// ===== SERVICE INTERFACES =====

type SurveyService interface {
	Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*models.Survey, error)
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string, role models.UserRole) (*models.Survey, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error

	Archive(ctx context.Context, id uint, userID string, role models.UserRole) (*models.Survey, error)
	Unarchive(ctx context.Context, id uint, userID string, role models.UserRole) (*models.Survey, error)
	Duplicate(ctx context.Context, id uint, userID string) (*models.Survey, error)
	ReorderQuestions(ctx context.Context, id uint, questionOrder []uint, userID string, role models.UserRole) (*models.Survey, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string, role models.UserRole) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID string, role models.UserRole) error
	Move(ctx context.Context, surveyID, questionID uint, direction string, userID string, role models.UserRole) (*models.Survey, error)
}

type AnswerService interface {
	Submit(ctx context.Context, req *SubmitAnswerRequest, respondentID string) (*models.Answer, error)
	GetBySurvey(ctx context.Context, surveyID uint, requesterID string) ([]*models.Answer, error)
	GetByQuestion(ctx context.Context, questionID uint, requesterID string) ([]*models.Answer, error)
	GetMyAnswers(ctx context.Context, surveyID uint, respondentID string) ([]*models.Answer, error)
	GetSurveyStats(ctx context.Context, surveyID uint, requesterID string) (*repositories.SurveyAnswerStats, error)
}

// ProgressService is the survey progress tracker. Cross-respondent
// operations take a requester identity and enforce creator/admin access
// before touching any data.
type ProgressService interface {
	Initialize(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error)
	Update(ctx context.Context, surveyID uint, respondentID string, questionID uint) (*models.SurveyProgress, error)
	Get(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error)

	GetSurveyParticipants(ctx context.Context, surveyID uint, req *ParticipantListRequest, requesterID string) ([]*ParticipantResponse, error)
	GetCompletionStats(ctx context.Context, surveyID uint, requesterID string) (repositories.CompletionStats, error)
	GetRespondentProgress(ctx context.Context, respondentID string) ([]*RespondentProgressResponse, error)

	DeleteBySurvey(ctx context.Context, surveyID uint) error
}

type ExportService interface {
	ExportParticipantsToExcel(ctx context.Context, surveyID uint, requesterID string) ([]byte, error)
	ExportParticipantsToCSV(ctx context.Context, surveyID uint, requesterID string) ([]byte, error)
}

// ServiceManager bundles the services for handler wiring.
type ServiceManager interface {
	Survey() SurveyService
	Question() QuestionService
	Answer() AnswerService
	Progress() ProgressService
	Export() ExportService
}
