package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"character-match-service/internal/infra/memory"
	"character-match-service/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalogService(t *testing.T) (*app.CatalogService, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	catalog := memory.NewCatalog()
	require.NoError(t, seed.Apply(context.Background(), catalog, clock.Now()))
	return app.NewCatalogService(catalog, zap.NewNop()).WithClock(clock.Now), clock
}

func TestQuizQuestionsOrdering(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	a, err := svc.CreateQuestion(ctx, domain.QuestionInput{Text: "late", Order: 5, Choices: []domain.Choice{{ID: "x", Text: "x"}}})
	require.NoError(t, err)
	b, err := svc.CreateQuestion(ctx, domain.QuestionInput{Text: "early", Order: 0, Choices: []domain.Choice{{ID: "y", Text: "y"}}})
	require.NoError(t, err)
	c, err := svc.CreateQuestion(ctx, domain.QuestionInput{Text: "also early", Order: 0, Choices: []domain.Choice{{ID: "z", Text: "z"}}})
	require.NoError(t, err)

	quiz, err := svc.CreateQuiz(ctx, domain.QuizInput{Title: "ordered", QuestionIDs: []string{a.ID, b.ID, c.ID}})
	require.NoError(t, err)

	questions, err := svc.QuizQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, []string{questions[0].ID, questions[1].ID, questions[2].ID})
}

func TestQuizQuestionsDanglingReference(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteQuestion(ctx, "q2"))
	_, err := svc.QuizQuestions(ctx, seed.DefaultQuizID)
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)

	_, err = svc.QuizQuestions(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestCreateQuizEmptyQuestionList(t *testing.T) {
	svc, _ := newCatalogService(t)
	quiz, err := svc.CreateQuiz(context.Background(), domain.QuizInput{Title: "empty"})
	require.NoError(t, err)
	assert.NotNil(t, quiz.QuestionIDs)
	assert.Len(t, quiz.ID, 32)

	questions, err := svc.QuizQuestions(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestUpdateQuizRefreshesUpdatedAt(t *testing.T) {
	svc, clock := newCatalogService(t)
	ctx := context.Background()
	quiz, err := svc.CreateQuiz(ctx, domain.QuizInput{Title: "first"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	title := "second"
	updated, err := svc.UpdateQuiz(ctx, quiz.ID, domain.QuizPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Title)
	assert.Equal(t, quiz.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(quiz.UpdatedAt))
}

func TestUpdateMissingEntities(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()
	name := "x"

	_, err := svc.UpdateQuiz(ctx, "nope", domain.QuizPatch{Title: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.UpdateQuestion(ctx, "nope", domain.QuestionPatch{Text: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = svc.UpdateCharacter(ctx, "nope", domain.CharacterPatch{Name: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.ErrorIs(t, svc.DeleteCharacter(ctx, "nope"), domain.ErrCharacterNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateQuestion(ctx, domain.QuestionInput{Text: "no choices"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateQuestion(ctx, domain.QuestionInput{Text: "dupes", Choices: []domain.Choice{{ID: "a", Text: "a"}, {ID: "a", Text: "b"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.CreateCharacter(ctx, domain.CharacterInput{Description: "no name"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Description is optional.
	c, err := svc.CreateCharacter(ctx, domain.CharacterInput{Name: "Chewbacca"})
	require.NoError(t, err)
	assert.Empty(t, c.Description)

	_, err = svc.CreateQuiz(ctx, domain.QuizInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCharacterCRUD(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.CreateCharacter(ctx, domain.CharacterInput{Name: "Yoda", Description: "Small, green."})
	require.NoError(t, err)
	assert.NotNil(t, created.Traits)

	got, err := svc.GetCharacter(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	all, err := svc.ListCharacters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, created.ID, all[3].ID)

	traits := map[string]float64{"wise": 1}
	updated, err := svc.UpdateCharacter(ctx, created.ID, domain.CharacterPatch{Traits: &traits})
	require.NoError(t, err)
	assert.Equal(t, "Yoda", updated.Name)
	assert.Equal(t, 1.0, updated.Traits["wise"])

	require.NoError(t, svc.DeleteCharacter(ctx, created.ID))
	_, err = svc.GetCharacter(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
}

func TestUpdateQuestionChoices(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	choices := []domain.Choice{{ID: "c9", Text: "Only option", Weights: map[string]float64{"leia": 2}}}
	updated, err := svc.UpdateQuestion(ctx, "q1", domain.QuestionPatch{Choices: &choices})
	require.NoError(t, err)
	assert.Equal(t, "Pick your ideal weekend activity:", updated.Text)
	require.Len(t, updated.Choices, 1)

	empty := []domain.Choice{}
	_, err = svc.UpdateQuestion(ctx, "q1", domain.QuestionPatch{Choices: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
