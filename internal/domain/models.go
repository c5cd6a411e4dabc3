package domain

import (
	"maps"
	"time"
)

// Choice is one selectable answer. Weights map character IDs to the score
// the choice contributes; a missing character counts as zero.
type Choice struct {
	ID      string             `json:"id" validate:"required"`
	Text    string             `json:"text" validate:"required"`
	Weights map[string]float64 `json:"weights" validate:"omitempty,dive,gte=0"`
}

// Question models a multiple-choice question.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
	Order   int      `json:"order"`
}

// Choice returns the choice with the given ID, if the question still has it.
func (q Question) Choice(id string) (Choice, bool) {
	for _, c := range q.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Character is a profile a session can be matched to. Traits are
// informational and do not feed scoring.
type Character struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url,omitempty"`
	Traits      map[string]float64 `json:"traits"`
}

// Quiz references its questions by ID only; the IDs are resolved lazily.
type Quiz struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	QuestionIDs []string  `json:"question_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Session tracks one user's pass through a quiz.
type Session struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Answers   map[string]string `json:"answers"` // question ID -> choice ID
	Uploads   []string          `json:"uploads"`
	QuizID    string            `json:"quiz_id,omitempty"`
	Scored    bool              `json:"scored"`
}

// Expired reports whether the session is past its TTL at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clone returns a copy that shares no maps or slices with s.
func (s Session) Clone() Session {
	out := s
	out.Answers = maps.Clone(s.Answers)
	if out.Answers == nil {
		out.Answers = make(map[string]string)
	}
	out.Uploads = append([]string(nil), s.Uploads...)
	return out
}

// LatestUpload returns the most recently appended upload reference.
func (s Session) LatestUpload() (string, bool) {
	if len(s.Uploads) == 0 {
		return "", false
	}
	return s.Uploads[len(s.Uploads)-1], true
}

// AnswerSubmission models a single answer sent by a client.
type AnswerSubmission struct {
	SessionID  string `json:"session_id"`
	QuizID     string `json:"quiz_id"`
	QuestionID string `json:"question_id"`
	ChoiceID   string `json:"choice_id"`
}

// ScoreResult is one character's tally.
type ScoreResult struct {
	CharacterID string  `json:"character_id"`
	Score       float64 `json:"score"`
}

// MatchResult is the ranked outcome of scoring a session.
type MatchResult struct {
	SessionID   string        `json:"session_id"`
	QuizID      string        `json:"quiz_id"`
	TopMatch    *ScoreResult  `json:"top_match"`
	Scores      []ScoreResult `json:"scores"`
	Character   *Character    `json:"character"`
	PortraitURL string        `json:"portrait_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// StoredResult holds the last match and the last portrait for a session.
// The two halves are written independently.
type StoredResult struct {
	Match             *MatchResult `json:"match,omitempty"`
	MatchUpdatedAt    time.Time    `json:"match_updated_at"`
	PortraitURL       string       `json:"portrait_url,omitempty"`
	PortraitUpdatedAt time.Time    `json:"portrait_updated_at"`
}

// QuestionInput is the admin payload for creating a question.
type QuestionInput struct {
	Text    string   `json:"text" validate:"required"`
	Choices []Choice `json:"choices" validate:"required,min=1,unique=ID,dive"`
	Order   int      `json:"order"`
}

// QuestionPatch updates only the fields that are set.
type QuestionPatch struct {
	Text    *string   `json:"text" validate:"omitempty,min=1"`
	Choices *[]Choice `json:"choices" validate:"omitempty,min=1,unique=ID,dive"`
	Order   *int      `json:"order"`
}

// CharacterInput is the admin payload for creating a character.
type CharacterInput struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url"`
	Traits      map[string]float64 `json:"traits"`
}

// CharacterPatch updates only the fields that are set.
type CharacterPatch struct {
	Name        *string             `json:"name" validate:"omitempty,min=1"`
	Description *string             `json:"description"`
	ImageURL    *string             `json:"image_url"`
	Traits      *map[string]float64 `json:"traits"`
}

// QuizInput is the admin payload for creating a quiz.
type QuizInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	QuestionIDs []string `json:"question_ids"`
}

// QuizPatch updates only the fields that are set.
type QuizPatch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Description *string   `json:"description"`
	QuestionIDs *[]string `json:"question_ids"`
}
