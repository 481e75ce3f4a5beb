package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "NOT_STARTED"
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
	ProgressCompleted  ProgressStatus = "COMPLETED"
)

// SurveyProgress tracks one respondent's completion state for one survey.
// Exactly one record exists per (survey, respondent) pair.
type SurveyProgress struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	SurveyID     uint   `json:"survey_id" gorm:"not null;uniqueIndex:idx_progress_survey_respondent,priority:1"`
	RespondentID string `json:"respondent_id" gorm:"not null;size:255;uniqueIndex:idx_progress_survey_respondent,priority:2;index:idx_progress_respondent_status,priority:1"`

	Status ProgressStatus `json:"status" gorm:"not null;default:NOT_STARTED;size:20;index;index:idx_progress_respondent_status,priority:2"`

	// Distinct question IDs the respondent has answered. Set semantics;
	// insertion order carries no meaning.
	AnsweredQuestions datatypes.JSONSlice[uint] `json:"answered_questions" gorm:"type:jsonb"`

	// Percentage in [0,100], derived from the answered set intersected with
	// the survey's current question set.
	Progress int `json:"progress" gorm:"not null;default:0" validate:"min=0,max=100"`

	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at" gorm:"index"`
	LastAnsweredAt *time.Time `json:"last_answered_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Survey     Survey `json:"survey" gorm:"foreignKey:SurveyID"`
	Respondent User   `json:"respondent" gorm:"foreignKey:RespondentID"`
}

func (SurveyProgress) TableName() string {
	return "survey_progress"
}

func (p *SurveyProgress) IsCompleted() bool {
	return p.Status == ProgressCompleted
}

func (p *SurveyProgress) IsStarted() bool {
	return p.Status != ProgressNotStarted
}

// HasAnswered reports whether questionID is already in the answered set.
func (p *SurveyProgress) HasAnswered(questionID uint) bool {
	for _, id := range p.AnsweredQuestions {
		if id == questionID {
			return true
		}
	}
	return false
}

// ComputeProgress derives the percentage for an answered set against the
// survey's current question IDs. Stale entries for questions that no longer
// exist in the survey are excluded, so a deleted question can never inflate
// the ratio. A survey with zero questions yields 0.
func ComputeProgress(answered []uint, currentQuestionIDs []uint) int {
	if len(currentQuestionIDs) == 0 {
		return 0
	}
	current := make(map[uint]struct{}, len(currentQuestionIDs))
	for _, id := range currentQuestionIDs {
		current[id] = struct{}{}
	}
	k := 0
	for _, id := range answered {
		if _, ok := current[id]; ok {
			k++
		}
	}
	return int(math.Round(float64(k) / float64(len(currentQuestionIDs)) * 100))
}

// IntersectAnswered prunes entries that are not in the survey's current
// question set, preserving the order of the remaining entries.
func IntersectAnswered(answered []uint, currentQuestionIDs []uint) []uint {
	current := make(map[uint]struct{}, len(currentQuestionIDs))
	for _, id := range currentQuestionIDs {
		current[id] = struct{}{}
	}
	kept := make([]uint, 0, len(answered))
	for _, id := range answered {
		if _, ok := current[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept
}
