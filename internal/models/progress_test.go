package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	questions := []uint{1, 2, 3}

	tests := []struct {
		name     string
		answered []uint
		current  []uint
		expected int
	}{
		{"no answers", nil, questions, 0},
		{"one of three rounds to 33", []uint{1}, questions, 33},
		{"two of three rounds to 67", []uint{1, 2}, questions, 67},
		{"all answered", []uint{1, 2, 3}, questions, 100},
		{"one of four", []uint{1}, []uint{1, 2, 3, 4}, 25},
		{"zero questions yields zero", []uint{1, 2}, nil, 0},
		{"deleted question excluded", []uint{1, 2, 99}, questions, 67},
		{"all answers stale", []uint{98, 99}, questions, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeProgress(tt.answered, tt.current))
		})
	}
}

func TestComputeProgress_NeverExceedsBounds(t *testing.T) {
	// Answered entries outside the current set must not push the
	// percentage above 100.
	current := []uint{1, 2}
	answered := []uint{1, 2, 3, 4, 5}
	assert.Equal(t, 100, ComputeProgress(answered, current))
}

func TestIntersectAnswered(t *testing.T) {
	current := []uint{1, 2, 3}

	assert.Equal(t, []uint{1, 3}, IntersectAnswered([]uint{1, 99, 3}, current))
	assert.Empty(t, IntersectAnswered([]uint{98, 99}, current))
	assert.Equal(t, []uint{2, 1}, IntersectAnswered([]uint{2, 1}, current), "ordering preserved")
}

func TestSurveyProgress_HasAnswered(t *testing.T) {
	p := &SurveyProgress{AnsweredQuestions: []uint{1, 5}}

	assert.True(t, p.HasAnswered(5))
	assert.False(t, p.HasAnswered(2))
}

func TestSurveyProgress_StatusHelpers(t *testing.T) {
	p := &SurveyProgress{Status: ProgressNotStarted}
	assert.False(t, p.IsStarted())
	assert.False(t, p.IsCompleted())

	p.Status = ProgressInProgress
	assert.True(t, p.IsStarted())
	assert.False(t, p.IsCompleted())

	p.Status = ProgressCompleted
	assert.True(t, p.IsStarted())
	assert.True(t, p.IsCompleted())
}
