package app

import (
	"context"
	"sort"

	"character-match-service/internal/domain"
)

// ComputeScores tallies the weights of every answered choice per character
// and returns the tallies sorted by score, highest first.
//
// Every character in characters starts at zero; weights naming a character
// not in the list are ignored. An answered question that no longer exists
// is a hard error, while a choice that vanished from its question is skipped.
// Answers are visited in question ID order so float sums do not depend on
// map iteration, and equal scores keep the order of characters.
func ComputeScores(ctx context.Context, answers map[string]string, characters []domain.Character, questions Table[domain.Question]) ([]domain.ScoreResult, error) {
	tally := make(map[string]float64, len(characters))
	for _, c := range characters {
		tally[c.ID] = 0
	}

	questionIDs := make([]string, 0, len(answers))
	for qid := range answers {
		questionIDs = append(questionIDs, qid)
	}
	sort.Strings(questionIDs)

	for _, qid := range questionIDs {
		q, err := questions.Get(ctx, qid)
		if err != nil {
			return nil, err
		}
		choice, ok := q.Choice(answers[qid])
		if !ok {
			continue
		}
		for charID, w := range choice.Weights {
			if _, tracked := tally[charID]; tracked {
				tally[charID] += w
			}
		}
	}

	results := make([]domain.ScoreResult, 0, len(characters))
	for _, c := range characters {
		if _, seen := tally[c.ID]; !seen {
			continue
		}
		results = append(results, domain.ScoreResult{CharacterID: c.ID, Score: tally[c.ID]})
		delete(tally, c.ID)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
