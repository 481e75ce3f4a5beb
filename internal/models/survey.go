package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Survey struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;uniqueIndex;size:500" validate:"required,min=1,max=500"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	IsTemplate  bool    `json:"is_template" gorm:"default:false"`

	// Archival
	IsArchived bool       `json:"is_archived" gorm:"default:false;index"`
	ArchivedAt *time.Time `json:"archived_at"`

	// Presentation order of question IDs. The progress tracker depends only
	// on the cardinality of Questions, never on this ordering.
	QuestionOrder datatypes.JSONSlice[uint] `json:"question_order" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:SurveyID"`
	Creator   User       `json:"creator" gorm:"foreignKey:CreatedBy"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// QuestionIDs returns the identifiers of the survey's current questions.
func (s *Survey) QuestionIDs() []uint {
	ids := make([]uint, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}
