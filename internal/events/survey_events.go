package events

import (
	"time"
)

// EventType represents different types of survey events
type EventType string

const (
	// Survey events
	EventSurveyArchived EventType = "survey.archived"
	EventSurveyDeleted  EventType = "survey.deleted"

	// Progress events
	EventProgressStarted   EventType = "progress.started"
	EventProgressUpdated   EventType = "progress.updated"
	EventSurveyCompleted   EventType = "progress.completed"
)

// SurveyEvent is the base event structure for all survey events
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Progress event payloads

type ProgressStartedEvent struct {
	SurveyID     uint      `json:"survey_id"`
	SurveyTitle  string    `json:"survey_title"`
	RespondentID string    `json:"respondent_id"`
	StartedAt    time.Time `json:"started_at"`
}

type ProgressUpdatedEvent struct {
	SurveyID      uint   `json:"survey_id"`
	RespondentID  string `json:"respondent_id"`
	QuestionID    uint   `json:"question_id"`
	Progress      int    `json:"progress"`
	AnsweredCount int    `json:"answered_count"`
	TotalCount    int    `json:"total_count"`
}

type SurveyCompletedEvent struct {
	SurveyID     uint      `json:"survey_id"`
	SurveyTitle  string    `json:"survey_title"`
	RespondentID string    `json:"respondent_id"`
	CompletedAt  time.Time `json:"completed_at"`
	CreatorID    string    `json:"creator_id"`
}

// Survey lifecycle payloads

type SurveyArchivedEvent struct {
	SurveyID    uint      `json:"survey_id"`
	SurveyTitle string    `json:"survey_title"`
	ArchivedAt  time.Time `json:"archived_at"`
	CreatorID   string    `json:"creator_id"`
}

type SurveyDeletedEvent struct {
	SurveyID  uint      `json:"survey_id"`
	DeletedAt time.Time `json:"deleted_at"`
	CreatorID string    `json:"creator_id"`
}
