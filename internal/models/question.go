package models

import (
	"time"

	"gorm.io/gorm"
)

type ResponseType string

const (
	ResponseText           ResponseType = "text"
	ResponseMultipleChoice ResponseType = "multiple_choice"
	ResponseSingleChoice   ResponseType = "single_choice"
	ResponseRating         ResponseType = "rating"
	ResponseBoolean        ResponseType = "boolean"
)

// HasOptions reports whether the response type carries a fixed option list.
func (t ResponseType) HasOptions() bool {
	return t == ResponseMultipleChoice || t == ResponseSingleChoice
}

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	SurveyID uint         `json:"survey_id" gorm:"not null;index:idx_questions_survey_order,priority:1"`
	Text     string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Type     ResponseType `json:"type" gorm:"not null;size:30" validate:"required,response_type"`

	AllowMultiple bool `json:"allow_multiple" gorm:"default:false"`
	IsMandatory   bool `json:"is_mandatory" gorm:"default:false"`
	Order         int  `json:"order" gorm:"not null;index:idx_questions_survey_order,priority:2" validate:"min=0"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Options []ResponseOption `json:"options" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

// ResponseOption is one selectable value for choice questions.
type ResponseOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Value      string `json:"value" gorm:"not null;size:500" validate:"required"`
	Order      int    `json:"order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ResponseOption) TableName() string {
	return "response_options"
}
