package app_test

import (
	"context"
	"errors"
	"testing"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"character-match-service/internal/infra/memory"
	"character-match-service/internal/seed"
)

func seededQuestions(t *testing.T) *memory.Table[domain.Question] {
	t.Helper()
	questions := memory.NewTable[domain.Question](domain.ErrQuestionNotFound)
	for _, q := range seed.Questions() {
		if err := questions.Put(context.Background(), q.ID, q); err != nil {
			t.Fatalf("put question: %v", err)
		}
	}
	return questions
}

func TestComputeScoresRanksAndBreaksTiesByCatalogOrder(t *testing.T) {
	scores, err := app.ComputeScores(context.Background(),
		map[string]string{"q1": "c1", "q2": "c6"},
		seed.Characters(), seededQuestions(t))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := []domain.ScoreResult{
		{CharacterID: "luke", Score: 1},
		{CharacterID: "leia", Score: 1},
		{CharacterID: "vader", Score: 0},
	}
	if len(scores) != len(want) {
		t.Fatalf("expected %d scores, got %+v", len(want), scores)
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], scores[i])
		}
	}
}

func TestComputeScoresIsDeterministic(t *testing.T) {
	questions := memory.NewTable[domain.Question](domain.ErrQuestionNotFound)
	answers := make(map[string]string)
	// Weights that do not sum exactly in floating point expose any
	// dependence on iteration order.
	weights := []float64{0.1, 0.7, 0.2, 0.3, 0.6, 0.05, 0.15, 0.9}
	for i, w := range weights {
		id := string(rune('a' + i))
		q := domain.Question{ID: id, Choices: []domain.Choice{{ID: "x", Text: "x", Weights: map[string]float64{"luke": w}}}}
		_ = questions.Put(context.Background(), id, q)
		answers[id] = "x"
	}

	first, err := app.ComputeScores(context.Background(), answers, seed.Characters(), questions)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := app.ComputeScores(context.Background(), answers, seed.Characters(), questions)
		if err != nil {
			t.Fatalf("compute %d: %v", i, err)
		}
		if again[0] != first[0] {
			t.Fatalf("run %d differs: %+v vs %+v", i, again[0], first[0])
		}
	}
}

func TestComputeScoresEmptyCatalog(t *testing.T) {
	scores, err := app.ComputeScores(context.Background(), map[string]string{"q1": "c1"}, nil, seededQuestions(t))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected no scores, got %+v", scores)
	}
}

func TestComputeScoresNoAnswersAllZero(t *testing.T) {
	scores, err := app.ComputeScores(context.Background(), nil, seed.Characters(), seededQuestions(t))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	for _, s := range scores {
		if s.Score != 0 {
			t.Fatalf("expected zero score, got %+v", s)
		}
	}
	if scores[0].CharacterID != "vader" {
		t.Fatalf("expected catalog order on all-zero tie, got %s first", scores[0].CharacterID)
	}
}

func TestComputeScoresIgnoresUnknownCharacters(t *testing.T) {
	questions := memory.NewTable[domain.Question](domain.ErrQuestionNotFound)
	_ = questions.Put(context.Background(), "q", domain.Question{ID: "q", Choices: []domain.Choice{
		{ID: "c", Text: "c", Weights: map[string]float64{"ghost": 5, "leia": 0.5}},
	}})
	scores, err := app.ComputeScores(context.Background(), map[string]string{"q": "c"}, seed.Characters(), questions)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, s := range scores {
		if s.CharacterID == "ghost" {
			t.Fatalf("unknown character leaked into scores: %+v", scores)
		}
	}
	if scores[0].CharacterID != "leia" || scores[0].Score != 0.5 {
		t.Fatalf("expected leia on top with 0.5, got %+v", scores[0])
	}
}

func TestComputeScoresMissingQuestionFails(t *testing.T) {
	_, err := app.ComputeScores(context.Background(), map[string]string{"gone": "c1"}, seed.Characters(), seededQuestions(t))
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestComputeScoresSkipsVanishedChoice(t *testing.T) {
	scores, err := app.ComputeScores(context.Background(),
		map[string]string{"q1": "removed", "q2": "c5"},
		seed.Characters(), seededQuestions(t))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if scores[0].CharacterID != "vader" || scores[0].Score != 1 {
		t.Fatalf("expected vader with 1, got %+v", scores[0])
	}
}
