package seed

import (
	"context"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
)

// DefaultQuizID is the ID of the demo quiz.
const DefaultQuizID = "default"

// Characters returns the demo character roster.
func Characters() []domain.Character {
	return []domain.Character{
		{
			ID:          "vader",
			Name:        "Darth Vader",
			Description: "A powerful Sith Lord with a tragic past.",
			ImageURL:    "/media/characters/vader.png",
			Traits:      map[string]float64{"dark": 0.9, "leader": 0.8, "calm": 0.2},
		},
		{
			ID:          "luke",
			Name:        "Luke Skywalker",
			Description: "A brave Jedi Knight striving for peace.",
			ImageURL:    "/media/characters/luke.png",
			Traits:      map[string]float64{"light": 0.9, "hope": 0.8, "calm": 0.6},
		},
		{
			ID:          "leia",
			Name:        "Princess Leia",
			Description: "A courageous leader of the Rebel Alliance.",
			ImageURL:    "/media/characters/leia.png",
			Traits:      map[string]float64{"leader": 0.9, "light": 0.7, "diplomacy": 0.8},
		},
	}
}

// Questions returns the demo question set.
func Questions() []domain.Question {
	return []domain.Question{
		{
			ID:    "q1",
			Text:  "Pick your ideal weekend activity:",
			Order: 1,
			Choices: []domain.Choice{
				{ID: "c1", Text: "Meditating and reflecting", Weights: map[string]float64{"luke": 1.0}},
				{ID: "c2", Text: "Strategizing a mission", Weights: map[string]float64{"leia": 1.0}},
				{ID: "c3", Text: "Harnessing the power of the dark side", Weights: map[string]float64{"vader": 1.0}},
			},
		},
		{
			ID:    "q2",
			Text:  "Choose a guiding principle:",
			Order: 2,
			Choices: []domain.Choice{
				{ID: "c4", Text: "Hope", Weights: map[string]float64{"luke": 1.0}},
				{ID: "c5", Text: "Order", Weights: map[string]float64{"vader": 1.0}},
				{ID: "c6", Text: "Leadership", Weights: map[string]float64{"leia": 1.0}},
			},
		},
	}
}

// Quiz returns the demo quiz referencing Questions.
func Quiz(now time.Time) domain.Quiz {
	return domain.Quiz{
		ID:          DefaultQuizID,
		Title:       "Which Star Wars Character Are You?",
		Description: "Answer questions to find your Star Wars alter ego!",
		QuestionIDs: []string{"q1", "q2"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply fills each empty catalog table with the demo data. Tables that
// already hold rows are left alone.
func Apply(ctx context.Context, catalog app.Catalog, now time.Time) error {
	characters, err := catalog.Characters.List(ctx)
	if err != nil {
		return err
	}
	if len(characters) == 0 {
		for _, c := range Characters() {
			if err := catalog.Characters.Put(ctx, c.ID, c); err != nil {
				return err
			}
		}
	}

	questions, err := catalog.Questions.List(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		for _, q := range Questions() {
			if err := catalog.Questions.Put(ctx, q.ID, q); err != nil {
				return err
			}
		}
	}

	quizzes, err := catalog.Quizzes.List(ctx)
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		quiz := Quiz(now.UTC())
		if err := catalog.Quizzes.Put(ctx, quiz.ID, quiz); err != nil {
			return err
		}
	}
	return nil
}
