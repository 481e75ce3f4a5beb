package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Answer holds one respondent's response to one question. A respondent has
// at most one answer per question; re-answering replaces the value.
type Answer struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	SurveyID     uint   `json:"survey_id" gorm:"not null;index"`
	QuestionID   uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_question_respondent,priority:1"`
	RespondentID string `json:"respondent_id" gorm:"not null;size:255;uniqueIndex:idx_answers_question_respondent,priority:2"`

	Value datatypes.JSON `json:"value" gorm:"type:jsonb;not null"`

	IsValid     bool       `json:"is_valid" gorm:"default:false"`
	ValidatedAt *time.Time `json:"validated_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Question   Question `json:"question" gorm:"foreignKey:QuestionID"`
	Respondent User     `json:"respondent" gorm:"foreignKey:RespondentID"`
}

func (Answer) TableName() string {
	return "answers"
}

// Per-type answer payloads. Each response type has exactly one shape; the
// validator decodes and checks the payload once, at submission time.

type TextAnswer struct {
	Text string `json:"text"`
}

type MultipleChoiceAnswer struct {
	SelectedOptions []string `json:"selected_options"`
}

type SingleChoiceAnswer struct {
	SelectedOption string `json:"selected_option"`
}

type RatingAnswer struct {
	Rating int `json:"rating"` // 1..5
}

type BooleanAnswer struct {
	Answer bool `json:"answer"`
}
