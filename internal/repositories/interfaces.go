package repositories

import (
	"time"

	"github.com/surveycraft/survey-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	IsTemplate *bool      `json:"is_template"`
	IsArchived *bool      `json:"is_archived"`
	CreatedBy  *string    `json:"created_by"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`    // "created_at", "title", "updated_at"
	SortOrder  string     `json:"sort_order"` // "asc", "desc"
}

// ParticipantFilters narrows a survey's progress records. All provided
// filters are combined with AND; absent filters impose no constraint.
type ParticipantFilters struct {
	Status      *models.ProgressStatus `json:"status"`
	MinProgress *int                   `json:"min_progress"`
	DateFrom    *time.Time             `json:"date_from"` // on started_at
	DateTo      *time.Time             `json:"date_to"`   // on started_at
}

type AnswerFilters struct {
	QuestionID   *uint      `json:"question_id"`
	RespondentID *string    `json:"respondent_id"`
	IsValid      *bool      `json:"is_valid"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"question_id"`
	Order      int  `json:"order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// StatusStats is one group of a survey's completion statistics.
type StatusStats struct {
	Count       int `json:"count"`
	AvgProgress int `json:"avg_progress"`
}

// CompletionStats maps lower-cased status names to their group stats. A
// survey with no participants yields an empty map.
type CompletionStats map[string]StatusStats

type SurveyAnswerStats struct {
	TotalAnswers     int          `json:"total_answers"`
	AnswersPerDay    map[string]int `json:"answers_per_day"`
	AnswersByQuestion map[uint]int  `json:"answers_by_question"`
}
