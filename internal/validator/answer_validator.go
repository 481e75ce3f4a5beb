package validator

import (
	"encoding/json"
	"fmt"

	"github.com/surveycraft/survey-service/internal/models"
)

// AnswerValidator checks an answer payload against its question. Each
// response type has exactly one validation function; the dispatch happens
// here and nowhere else.
type AnswerValidator struct{}

// NewAnswerValidator creates a new answer validator
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// ValidateValue validates a raw answer value for the given question.
func (v *AnswerValidator) ValidateValue(question *models.Question, value json.RawMessage) error {
	if len(value) == 0 {
		return fmt.Errorf("answer value cannot be empty")
	}

	switch question.Type {
	case models.ResponseText:
		return v.validateText(value)
	case models.ResponseMultipleChoice:
		return v.validateMultipleChoice(question, value)
	case models.ResponseSingleChoice:
		return v.validateSingleChoice(question, value)
	case models.ResponseRating:
		return v.validateRating(value)
	case models.ResponseBoolean:
		return v.validateBoolean(value)
	default:
		return fmt.Errorf("unsupported response type: %s", question.Type)
	}
}

func (v *AnswerValidator) validateText(value json.RawMessage) error {
	var answer models.TextAnswer
	if err := json.Unmarshal(value, &answer); err != nil {
		return fmt.Errorf("invalid text answer: %w", err)
	}
	if answer.Text == "" {
		return fmt.Errorf("text answer cannot be empty")
	}
	return nil
}

func (v *AnswerValidator) validateMultipleChoice(question *models.Question, value json.RawMessage) error {
	var answer models.MultipleChoiceAnswer
	if err := json.Unmarshal(value, &answer); err != nil {
		return fmt.Errorf("invalid multiple choice answer: %w", err)
	}

	if len(answer.SelectedOptions) == 0 {
		return fmt.Errorf("must select at least 1 option")
	}
	if len(answer.SelectedOptions) > 1 && !question.AllowMultiple {
		return fmt.Errorf("question does not allow multiple selections")
	}

	valid := optionValueSet(question)
	seen := make(map[string]bool, len(answer.SelectedOptions))
	for _, selected := range answer.SelectedOptions {
		if !valid[selected] {
			return fmt.Errorf("selected option '%s' does not match any response option", selected)
		}
		if seen[selected] {
			return fmt.Errorf("option '%s' selected more than once", selected)
		}
		seen[selected] = true
	}

	return nil
}

func (v *AnswerValidator) validateSingleChoice(question *models.Question, value json.RawMessage) error {
	var answer models.SingleChoiceAnswer
	if err := json.Unmarshal(value, &answer); err != nil {
		return fmt.Errorf("invalid single choice answer: %w", err)
	}

	if answer.SelectedOption == "" {
		return fmt.Errorf("must select an option")
	}
	if !optionValueSet(question)[answer.SelectedOption] {
		return fmt.Errorf("selected option '%s' does not match any response option", answer.SelectedOption)
	}

	return nil
}

func (v *AnswerValidator) validateRating(value json.RawMessage) error {
	var answer models.RatingAnswer
	if err := json.Unmarshal(value, &answer); err != nil {
		return fmt.Errorf("invalid rating answer: %w", err)
	}
	if answer.Rating < 1 || answer.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

func (v *AnswerValidator) validateBoolean(value json.RawMessage) error {
	var answer models.BooleanAnswer
	if err := json.Unmarshal(value, &answer); err != nil {
		return fmt.Errorf("invalid boolean answer: %w", err)
	}
	return nil
}

func optionValueSet(question *models.Question) map[string]bool {
	values := make(map[string]bool, len(question.Options))
	for _, option := range question.Options {
		values[option.Value] = true
	}
	return values
}
