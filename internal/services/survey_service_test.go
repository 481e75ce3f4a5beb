package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveycraft/survey-service/internal/events"
	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/validator"
)

type surveyTestEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	surveys   SurveyService
	questions QuestionService
}

func newSurveyTestEnv(t *testing.T) *surveyTestEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepository()
	v := validator.New()
	publisher := events.NewMockEventPublisher(logger)
	return &surveyTestEnv{
		repo:      repo,
		publisher: publisher,
		surveys:   NewSurveyService(repo, logger, v, publisher, nil),
		questions: NewQuestionService(repo, logger, v, nil),
	}
}

func TestSurveyService_Create(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Onboarding"}, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, "creator-1", survey.CreatedBy)
	assert.False(t, survey.IsArchived)

	_, err = env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Onboarding"}, "creator-2")
	assert.ErrorIs(t, err, ErrSurveyDuplicateTitle)
}

func TestSurveyService_Create_ValidatesTitle(t *testing.T) {
	env := newSurveyTestEnv(t)

	_, err := env.surveys.Create(context.Background(), &CreateSurveyRequest{Title: ""}, "creator-1")
	assert.True(t, IsValidation(err), "empty title must fail validation, got %v", err)
}

func TestSurveyService_Update_Authorization(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Quarterly Review"}, "creator-1")
	require.NoError(t, err)

	title := "Renamed"
	_, err = env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Title: &title}, "someone-else", models.RoleUser)
	assert.True(t, IsForbidden(err))

	updated, err := env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Title: &title}, "someone-else", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestSurveyService_ArchiveLifecycle(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Exit Interview"}, "creator-1")
	require.NoError(t, err)

	archived, err := env.surveys.Archive(ctx, survey.ID, "creator-1", models.RoleUser)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.NotNil(t, archived.ArchivedAt)

	// Archiving twice is a state error, as is editing while archived.
	_, err = env.surveys.Archive(ctx, survey.ID, "creator-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrSurveyArchived)

	title := "New title"
	_, err = env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Title: &title}, "creator-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrSurveyArchived)

	restored, err := env.surveys.Unarchive(ctx, survey.ID, "creator-1", models.RoleUser)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Nil(t, restored.ArchivedAt)

	published := env.publisher.GetPublishedEvents()
	require.NotEmpty(t, published)
	assert.Equal(t, events.EventSurveyArchived, published[0].Type)
}

func TestSurveyService_Delete_Cascades(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "To Remove"}, "creator-1")
	require.NoError(t, err)
	q, err := env.questions.Create(ctx, &CreateQuestionRequest{
		SurveyID: survey.ID,
		Text:     "Anything to add?",
		Type:     models.ResponseText,
	}, "creator-1")
	require.NoError(t, err)

	require.NoError(t, env.repo.Progress().Create(ctx, &models.SurveyProgress{
		SurveyID:     survey.ID,
		RespondentID: "resp-1",
		Status:       models.ProgressInProgress,
	}))

	require.NoError(t, env.surveys.Delete(ctx, survey.ID, "creator-1", models.RoleUser))

	_, err = env.surveys.GetByID(ctx, survey.ID)
	assert.ErrorIs(t, err, ErrSurveyNotFound)
	_, err = env.questions.GetByID(ctx, q.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	remaining, err := env.repo.Progress().GetByRespondent(ctx, "resp-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSurveyService_Duplicate(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Template"}, "creator-1")
	require.NoError(t, err)
	_, err = env.questions.Create(ctx, &CreateQuestionRequest{
		SurveyID:       survey.ID,
		Text:           "Pick one",
		Type:           models.ResponseSingleChoice,
		ResponseValues: []string{"yes", "no"},
	}, "creator-1")
	require.NoError(t, err)

	dup, err := env.surveys.Duplicate(ctx, survey.ID, "creator-2")
	require.NoError(t, err)

	assert.Equal(t, "Template (Copy)", dup.Title)
	assert.Equal(t, "creator-2", dup.CreatedBy)
	require.Len(t, dup.Questions, 1)
	assert.NotEqual(t, survey.ID, dup.ID)
	assert.Len(t, dup.Questions[0].Options, 2)
}

func TestSurveyService_ReorderQuestions(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Ordered"}, "creator-1")
	require.NoError(t, err)

	var ids []uint
	for _, text := range []string{"first", "second", "third"} {
		q, qerr := env.questions.Create(ctx, &CreateQuestionRequest{
			SurveyID: survey.ID,
			Text:     text,
			Type:     models.ResponseText,
		}, "creator-1")
		require.NoError(t, qerr)
		ids = append(ids, q.ID)
	}

	reordered, err := env.surveys.ReorderQuestions(ctx, survey.ID, []uint{ids[2], ids[0], ids[1]}, "creator-1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, []uint(reordered.QuestionOrder))

	// Partial and foreign orders are rejected.
	_, err = env.surveys.ReorderQuestions(ctx, survey.ID, []uint{ids[0]}, "creator-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidQuestionOrder)
	_, err = env.surveys.ReorderQuestions(ctx, survey.ID, []uint{ids[0], ids[1], 999}, "creator-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidQuestionOrder)
}

func TestQuestionService_MoveQuestion(t *testing.T) {
	env := newSurveyTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Movable"}, "creator-1")
	require.NoError(t, err)

	var ids []uint
	for _, text := range []string{"a", "b"} {
		q, qerr := env.questions.Create(ctx, &CreateQuestionRequest{
			SurveyID: survey.ID,
			Text:     text,
			Type:     models.ResponseText,
		}, "creator-1")
		require.NoError(t, qerr)
		ids = append(ids, q.ID)
	}

	moved, err := env.questions.Move(ctx, survey.ID, ids[1], "up", "creator-1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[1], ids[0]}, []uint(moved.QuestionOrder))

	// The first question cannot move further up.
	_, err = env.questions.Move(ctx, survey.ID, ids[1], "up", "creator-1", models.RoleUser)
	assert.ErrorIs(t, err, ErrQuestionInvalidMove)
}
