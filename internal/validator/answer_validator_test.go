package validator

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/surveycraft/survey-service/internal/models"
)

func choiceQuestion(t models.ResponseType, allowMultiple bool, values ...string) *models.Question {
	q := &models.Question{Type: t, AllowMultiple: allowMultiple}
	for i, v := range values {
		q.Options = append(q.Options, models.ResponseOption{Value: v, Order: i})
	}
	return q
}

func TestAnswerValidator_Text(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{Type: models.ResponseText}

	assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"text":"some answer"}`)))
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"text":""}`)))
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`not json`)))
	assert.Error(t, v.ValidateValue(q, nil))
}

func TestAnswerValidator_SingleChoice(t *testing.T) {
	v := NewAnswerValidator()
	q := choiceQuestion(models.ResponseSingleChoice, false, "red", "green", "blue")

	assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"selected_option":"green"}`)))
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_option":"purple"}`)), "option not in list")
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_option":""}`)))
}

func TestAnswerValidator_MultipleChoice(t *testing.T) {
	v := NewAnswerValidator()

	t.Run("multiple allowed", func(t *testing.T) {
		q := choiceQuestion(models.ResponseMultipleChoice, true, "a", "b", "c")

		assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":["a","c"]}`)))
		assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":[]}`)), "empty selection")
		assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":["a","z"]}`)), "unknown option")
		assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":["a","a"]}`)), "duplicate selection")
	})

	t.Run("single selection enforced", func(t *testing.T) {
		q := choiceQuestion(models.ResponseMultipleChoice, false, "a", "b")

		assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":["b"]}`)))
		assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"selected_options":["a","b"]}`)))
	})
}

func TestAnswerValidator_Rating(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{Type: models.ResponseRating}

	for rating := 1; rating <= 5; rating++ {
		payload := json.RawMessage(fmt.Sprintf(`{"rating":%d}`, rating))
		assert.NoError(t, v.ValidateValue(q, payload), "rating %d", rating)
	}
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"rating":0}`)))
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"rating":6}`)))
}

func TestAnswerValidator_Boolean(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{Type: models.ResponseBoolean}

	assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"answer":true}`)))
	assert.NoError(t, v.ValidateValue(q, json.RawMessage(`{"answer":false}`)))
	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{"answer":"yes"}`)))
}

func TestAnswerValidator_UnsupportedType(t *testing.T) {
	v := NewAnswerValidator()
	q := &models.Question{Type: models.ResponseType("essay")}

	assert.Error(t, v.ValidateValue(q, json.RawMessage(`{}`)))
}
